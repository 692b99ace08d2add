package retire

import (
	"errors"
	"strings"
	"testing"
)

func TestParseAssetClass(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    AssetClass
		wantErr bool
	}{
		{"equities", "equities", Equities, false},
		{"fixed income", "fixed_income", FixedIncome, false},
		{"alternatives", "alternatives", Alternatives, false},
		{"legacy equity alias", "equity", Equities, false},
		{"case and spaces", "  Fixed_Income ", FixedIncome, false},
		{"unknown", "crypto", 0, true},
		{"empty", "", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAssetClass(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseAssetClass(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidAsset) {
					t.Errorf("ParseAssetClass(%q) error = %v, want ErrInvalidAsset", tc.input, err)
				}
				return
			}
			if got != tc.want {
				t.Errorf("ParseAssetClass(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestAssetClasses(t *testing.T) {
	classes := AssetClasses()
	if len(classes) != int(numAssetClasses) {
		t.Fatalf("len(AssetClasses()) = %d, want %d", len(classes), numAssetClasses)
	}
	for _, a := range classes {
		parsed, err := ParseAssetClass(a.String())
		if err != nil || parsed != a {
			t.Errorf("ParseAssetClass(%q) = %v, %v, want %v", a.String(), parsed, err, a)
		}
	}
	if got := AssetClass(99).String(); got != "AssetClass(99)" {
		t.Errorf("AssetClass(99).String() = %q", got)
	}
}

func TestDefaultAssetParams(t *testing.T) {
	params := DefaultAssetParams()
	if err := params.Validate(); err != nil {
		t.Fatalf("default params are invalid: %v", err)
	}
	for _, a := range AssetClasses() {
		if _, err := params.Model(a); err != nil {
			t.Errorf("no default model for %v: %v", a, err)
		}
	}
	if m := params[Equities]; m.Mean != 0.08 || m.StdDev != 0.15 {
		t.Errorf("equities model = %+v, want {0.08 0.15}", m)
	}
}

func TestAssetParams_Validate(t *testing.T) {
	params := DefaultAssetParams()
	params[FixedIncome] = ReturnModel{Mean: 0.03, StdDev: -0.01}
	err := params.Validate()
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("Validate() = %v, want ErrInvalidConfiguration", err)
	}

	params = DefaultAssetParams()
	params[AssetClass(7)] = ReturnModel{}
	if err := params.Validate(); !errors.Is(err, ErrInvalidAsset) {
		t.Errorf("Validate() = %v, want ErrInvalidAsset", err)
	}
}

func TestDecodeAssetParams(t *testing.T) {
	params, err := DecodeAssetParams(strings.NewReader(`{"equities": {"mean": 0.07, "std_dev": 0.18}}`))
	if err != nil {
		t.Fatalf("DecodeAssetParams() error = %v", err)
	}
	if got := params[Equities]; got != (ReturnModel{Mean: 0.07, StdDev: 0.18}) {
		t.Errorf("equities = %+v, want overridden model", got)
	}
	if got, want := params[Alternatives], DefaultAssetParams()[Alternatives]; got != want {
		t.Errorf("alternatives = %+v, want default %+v", got, want)
	}

	_, err = DecodeAssetParams(strings.NewReader(`{"bonds": {"mean": 0.02, "std_dev": 0.01}}`))
	if !errors.Is(err, ErrInvalidAsset) {
		t.Errorf("DecodeAssetParams() with unknown class = %v, want ErrInvalidAsset", err)
	}

	_, err = DecodeAssetParams(strings.NewReader(`{"equities": {"mean": 0.02, "std_dev": -1}}`))
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("DecodeAssetParams() with negative std dev = %v, want ErrInvalidConfiguration", err)
	}
}
