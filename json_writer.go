package retire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// jsonObjectWriter builds a JSON object whose fields keep the order in which
// they were written, unlike maps. Its zero value is an empty object.
//
// The first error is kept and returned by MarshalJSON; later writes are ignored.
type jsonObjectWriter struct {
	fields bytes.Buffer
	err    error
}

// field writes a comma unless it is the first field.
func (w *jsonObjectWriter) field() {
	if w.fields.Len() > 0 {
		w.fields.WriteByte(',')
	}
}

// Embed copies the fields of a JSON object.
func (w *jsonObjectWriter) Embed(object []byte) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	object = bytes.TrimSpace(object)
	if len(object) < 2 || object[0] != '{' || object[len(object)-1] != '}' {
		w.err = fmt.Errorf("cannot embed %q: not a JSON object", object)
		return w
	}
	if inner := bytes.TrimSpace(object[1 : len(object)-1]); len(inner) > 0 {
		w.field()
		w.fields.Write(inner)
	}
	return w
}

// EmbedFrom copies the fields of v, which must marshal to a JSON object.
func (w *jsonObjectWriter) EmbedFrom(v any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	object, err := json.Marshal(v)
	if err != nil {
		w.err = fmt.Errorf("cannot embed %T: %w", v, err)
		return w
	}
	return w.Embed(object)
}

// Append writes the field key with the JSON encoding of value.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	k, err := json.Marshal(key)
	if err != nil {
		w.err = err
		return w
	}
	v, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("cannot write %q: %w", key, err)
		return w
	}
	w.field()
	w.fields.Write(k)
	w.fields.WriteByte(':')
	w.fields.Write(v)
	return w
}

// Optional is Append, but skips zero values.
func (w *jsonObjectWriter) Optional(key string, value any) *jsonObjectWriter {
	if v := reflect.ValueOf(value); !v.IsValid() || v.IsZero() {
		return w
	}
	return w.Append(key, value)
}

func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	out := make([]byte, 0, w.fields.Len()+2)
	out = append(out, '{')
	out = append(out, w.fields.Bytes()...)
	return append(out, '}'), nil
}
