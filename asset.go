package retire

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// AssetClass identifies a family of investments sharing a return model.
type AssetClass int

const (
	Equities AssetClass = iota
	FixedIncome
	Alternatives

	numAssetClasses
)

var assetNames = [numAssetClasses]string{
	Equities:     "equities",
	FixedIncome:  "fixed_income",
	Alternatives: "alternatives",
}

// legacy identifiers still sent by older clients.
var assetAliases = map[string]AssetClass{
	"equity": Equities,
}

// AssetClasses returns every known asset class, in declaration order.
func AssetClasses() []AssetClass {
	classes := make([]AssetClass, 0, numAssetClasses)
	for a := AssetClass(0); a < numAssetClasses; a++ {
		classes = append(classes, a)
	}
	return classes
}

func (a AssetClass) valid() bool { return a >= 0 && a < numAssetClasses }

func (a AssetClass) String() string {
	if !a.valid() {
		return fmt.Sprintf("AssetClass(%d)", int(a))
	}
	return assetNames[a]
}

// ParseAssetClass returns the asset class identified by s.
func ParseAssetClass(s string) (AssetClass, error) {
	id := strings.ToLower(strings.TrimSpace(s))
	for a, name := range assetNames {
		if name == id {
			return AssetClass(a), nil
		}
	}
	if a, ok := assetAliases[id]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("%w: %q, expected one of: %s", ErrInvalidAsset, s, strings.Join(assetNames[:], ", "))
}

func (a AssetClass) MarshalText() ([]byte, error) {
	if !a.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAsset, int(a))
	}
	return []byte(a.String()), nil
}

func (a *AssetClass) UnmarshalText(text []byte) error {
	v, err := ParseAssetClass(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ReturnModel is the normal distribution of an asset class annual return.
type ReturnModel struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Validate checks that the model describes a real distribution.
func (m ReturnModel) Validate() error {
	if math.IsNaN(m.Mean) || math.IsInf(m.Mean, 0) {
		return fmt.Errorf("%w: mean must be a finite number, got %v", ErrInvalidConfiguration, m.Mean)
	}
	if math.IsNaN(m.StdDev) || math.IsInf(m.StdDev, 0) || m.StdDev < 0 {
		return fmt.Errorf("%w: standard deviation must be a finite non-negative number, got %v", ErrInvalidConfiguration, m.StdDev)
	}
	return nil
}

// AssetParams maps each asset class to its return model.
//
// Treat it as read-only once a simulation uses it.
type AssetParams map[AssetClass]ReturnModel

// DefaultAssetParams returns the return models under standard market conditions.
func DefaultAssetParams() AssetParams {
	return AssetParams{
		Equities:     {Mean: 0.08, StdDev: 0.15},
		FixedIncome:  {Mean: 0.035, StdDev: 0.05},
		Alternatives: {Mean: 0.05, StdDev: 0.10},
	}
}

// Model returns the return model of a.
func (p AssetParams) Model(a AssetClass) (ReturnModel, error) {
	m, ok := p[a]
	if !ok {
		return ReturnModel{}, fmt.Errorf("%w: %v has no return model", ErrInvalidAsset, a)
	}
	return m, nil
}

// Validate checks every model, reporting all the invalid ones.
func (p AssetParams) Validate() error {
	var errs error
	for _, a := range AssetClasses() {
		m, ok := p[a]
		if !ok {
			continue
		}
		if err := m.Validate(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("%v: %w", a, err))
		}
	}
	for a := range p {
		if !a.valid() {
			errs = errors.Join(errs, fmt.Errorf("%w: %v", ErrInvalidAsset, a))
		}
	}
	return errs
}

// Clone returns a copy of p that can be modified freely.
func (p AssetParams) Clone() AssetParams {
	c := make(AssetParams, len(p))
	for a, m := range p {
		c[a] = m
	}
	return c
}

// DecodeAssetParams reads return models from a JSON object keyed by asset
// class identifier, e.g. {"equities": {"mean": 0.07, "std_dev": 0.18}}.
//
// Asset classes absent from the document keep their default model.
func DecodeAssetParams(r io.Reader) (AssetParams, error) {
	var overrides map[AssetClass]ReturnModel
	if err := json.NewDecoder(r).Decode(&overrides); err != nil {
		return nil, fmt.Errorf("cannot decode asset return models: %w", err)
	}
	params := DefaultAssetParams()
	for a, m := range overrides {
		params[a] = m
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}
