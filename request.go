package retire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Request is a validated simulation request, as sent by clients of the
// `/submit-form` endpoint.
type Request struct {
	Income       float64
	Expenses     float64
	Liabilities  float64
	Cashflows    float64
	Portfolio    Allocation
	CurrentValue float64
	Goal         float64
	Year         int
	Iterations   int
	Inflation    float64
}

// Profile returns the financial profile described by the request.
func (r Request) Profile() FinancialProfile {
	return FinancialProfile{
		CurrentValue: r.CurrentValue,
		Income:       r.Income,
		Cashflows:    r.Cashflows,
		Expenses:     r.Expenses,
		Liabilities:  r.Liabilities,
		Allocation:   r.Portfolio,
	}
}

// Config returns the simulation settings of the request, run on workers goroutines.
func (r Request) Config(workers int) SimulationConfig {
	return SimulationConfig{
		Years:      r.Year,
		Iterations: r.Iterations,
		Inflation:  r.Inflation,
		Workers:    workers,
	}
}

func (r Request) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("income", r.Income)
	w.Append("expenses", r.Expenses)
	w.Append("liabilities", r.Liabilities)
	w.Append("cashflows", r.Cashflows)
	w.Append("portfolio", r.Portfolio)
	w.Append("current_value", r.CurrentValue)
	w.Append("goal", r.Goal)
	w.Append("year", r.Year)
	w.Append("iterations", r.Iterations)
	w.Append("inflation", r.Inflation)
	return w.MarshalJSON()
}

// wireRequest is the JSON shape of a Request; pointers tell missing fields apart.
type wireRequest struct {
	Income       *float64           `json:"income"`
	Expenses     *float64           `json:"expenses"`
	Liabilities  *float64           `json:"liabilities"`
	Cashflows    *float64           `json:"cashflows"`
	Portfolio    map[string]float64 `json:"portfolio"`
	CurrentValue *float64           `json:"current_value"`
	Goal         *float64           `json:"goal"`
	Year         *int               `json:"year"`
	Iterations   *int               `json:"iterations"`
	Inflation    *float64           `json:"inflation"`
}

// RequestDecoder reads requests, filling absent optional fields with its defaults.
type RequestDecoder struct {
	Years      int
	Iterations int
	Inflation  float64
}

// NewRequestDecoder returns a decoder with the package defaults.
func NewRequestDecoder() *RequestDecoder {
	return &RequestDecoder{
		Years:      DefaultYears,
		Iterations: DefaultIterations,
		Inflation:  DefaultInflation,
	}
}

// DecodeRequest reads a request with the package defaults.
func DecodeRequest(r io.Reader) (Request, error) {
	return NewRequestDecoder().Decode(r)
}

// Decode reads a JSON request from r.
//
// Errors report every missing or malformed field and wrap ErrMalformedInput.
// Value ranges (negative years, zero iterations...) are checked later by
// SimulationConfig.Validate.
func (d *RequestDecoder) Decode(r io.Reader) (Request, error) {
	var wire wireRequest
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return d.build(wire)
}

// DecodeAt reads a JSON document from r and decodes the request found at the
// given JSONPath, e.g. "$.household". An empty path decodes the whole document.
func (d *RequestDecoder) DecodeAt(r io.Reader, path string) (Request, error) {
	if path == "" {
		return d.Decode(r)
	}
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return d.Extract(doc, path)
}

// ExtractRequest decodes the request found at path in doc, with the package defaults.
func ExtractRequest(doc any, path string) (Request, error) {
	return NewRequestDecoder().Extract(doc, path)
}

// Extract decodes the request found at path in an already parsed JSON document.
func (d *RequestDecoder) Extract(doc any, path string) (Request, error) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return Request{}, fmt.Errorf("%w: cannot evaluate %q: %w", ErrMalformedInput, path, err)
	}
	// jsonpath returns a list for wildcard or filter paths: keep the first match.
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return Request{}, fmt.Errorf("%w: nothing found at %q", ErrMalformedInput, path)
		}
		v = list[0]
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return d.Decode(bytes.NewReader(raw))
}

func (d *RequestDecoder) build(wire wireRequest) (Request, error) {
	var errs error
	required := func(name string, v *float64) float64 {
		if v == nil {
			errs = errors.Join(errs, fmt.Errorf("%w: field %q is required", ErrMalformedInput, name))
			return 0
		}
		return *v
	}

	req := Request{
		Income:       required("income", wire.Income),
		Expenses:     required("expenses", wire.Expenses),
		Liabilities:  required("liabilities", wire.Liabilities),
		CurrentValue: required("current_value", wire.CurrentValue),
		Goal:         required("goal", wire.Goal),
		Year:         d.Years,
		Iterations:   d.Iterations,
		Inflation:    d.Inflation,
	}
	if wire.Cashflows != nil {
		req.Cashflows = *wire.Cashflows
	}
	if wire.Year != nil {
		req.Year = *wire.Year
	}
	if wire.Iterations != nil {
		req.Iterations = *wire.Iterations
	}
	if wire.Inflation != nil {
		req.Inflation = *wire.Inflation
	}

	portfolio, err := parsePortfolio(wire.Portfolio)
	if err != nil {
		errs = errors.Join(errs, err)
	}
	req.Portfolio = portfolio

	if errs != nil {
		return Request{}, errs
	}
	return req, nil
}

// parsePortfolio requires exactly one weight per known asset class.
func parsePortfolio(raw map[string]float64) (Allocation, error) {
	expected := make([]string, 0, numAssetClasses)
	for _, a := range AssetClasses() {
		expected = append(expected, a.String())
	}
	malformed := fmt.Errorf("%w: portfolio must contain exactly the fields %s", ErrMalformedInput, strings.Join(expected, ", "))

	if raw == nil {
		return nil, malformed
	}
	alloc := make(Allocation, len(raw))
	for key, w := range raw {
		a, err := ParseAssetClass(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", malformed, err)
		}
		if _, dup := alloc[a]; dup {
			return nil, fmt.Errorf("%w: %v is given twice", malformed, a)
		}
		alloc[a] = w
	}
	if len(alloc) != int(numAssetClasses) {
		return nil, malformed
	}
	return alloc, nil
}

// Response is a simulation result along with the request that produced it.
type Response struct {
	Request Request
	Result  *SimulationResult
}

// NewResponse pairs a result with its request.
func NewResponse(req Request, res *SimulationResult) Response {
	return Response{Request: req, Result: res}
}

// NetContribution returns the first-year net contribution of the request.
func (r Response) NetContribution() float64 { return r.Request.Profile().NetContribution() }

func (r Response) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(r.Request)
	if r.Result != nil {
		// iterations is already echoed from the request.
		w.Append("probability", r.Result.probability)
		w.Append("avg_yearly_networth", r.Result.average)
		w.Append("inflated_goal", r.Result.inflatedGoal)
	}
	return w.MarshalJSON()
}
