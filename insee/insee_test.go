package insee

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

const cpiCSV = `"Libellé";"Indice des prix à la consommation - Base 2015 - Ensemble des ménages - France - Ensemble";"Codes"
"idBank";"001759970";""
"Dernière mise à jour";"30/09/2025 08:45";""
"Période";"";""
"2025-09";"";""
"2025-08";"122.4";"A"
"2025-07";"122.0";"A"
"2024-09";"120.9";"A"
"2024-08";"120.6";"A"
`

func TestParseSeries(t *testing.T) {
	series, err := parseSeries(strings.NewReader(cpiCSV))
	if err != nil {
		t.Fatalf("parseSeries() failed: %v", err)
	}

	expectedLibelle := "Indice des prix à la consommation - Base 2015 - Ensemble des ménages - France - Ensemble"
	if series.Libelle != expectedLibelle {
		t.Errorf("got Libelle %q, want %q", series.Libelle, expectedLibelle)
	}
	if series.IDBank != DefaultSeries {
		t.Errorf("got IDBank %q, want %q", series.IDBank, DefaultSeries)
	}

	expectedLastUpdate := time.Date(2025, 9, 30, 8, 45, 0, 0, time.UTC)
	if !series.LastUpdate.Equal(expectedLastUpdate) {
		t.Errorf("got LastUpdate %v, want %v", series.LastUpdate, expectedLastUpdate)
	}

	if len(series.Values) != 4 {
		t.Errorf("got %d values, want 4", len(series.Values))
	}

	aug2025 := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	if val, ok := series.Values[aug2025]; !ok || val != 122.4 {
		t.Errorf("for date %v, got %f, want 122.4", aug2025, val)
	}
}

func TestParseSeries_Quarterly(t *testing.T) {
	csvData := `"Libellé";"..."
"idBank";"010567069"
"Dernière mise à jour";"28/08/2025 08:45"
"Période";""
"2025-T2";"135.2"
"2024-T4";"133.4"
`
	series, err := parseSeries(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("parseSeries() failed: %v", err)
	}
	for date, want := range map[time.Time]float64{
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC):  135.2,
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC): 133.4,
	} {
		if got, ok := series.Values[date]; !ok || got != want {
			t.Errorf("for date %v, got %f, want %f", date, got, want)
		}
	}
}

func TestParseSeries_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		csvData string
		wantErr string
	}{
		{
			name: "bad last update date",
			csvData: `"Libellé";"..."
"idBank";"..."
"Dernière mise à jour";"not-a-date"
"Période";""
`,
			wantErr: "failed to parse last update date",
		},
		{
			name: "bad quarterly date",
			csvData: `"Libellé";"..."
"idBank";"..."
"Dernière mise à jour";"28/08/2025 08:45"
"Période";""
"2025-T5";"135.2"`,
			wantErr: "invalid quarter in quarterly date",
		},
		{
			name: "bad month",
			csvData: `"Libellé";"..."
"idBank";"..."
"Dernière mise à jour";"28/08/2025 08:45"
"Période";""
"2025-13";"135.2"`,
			wantErr: "invalid month in monthly date",
		},
		{
			name: "bad value",
			csvData: `"Libellé";"..."
"idBank";"..."
"Dernière mise à jour";"28/08/2025 08:45"
"Période";""
"2025-08";"not-a-float"`,
			wantErr: "failed to parse value",
		},
		{
			name:    "not enough records",
			csvData: `"Libellé";"..."`,
			wantErr: "not enough records in csv",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseSeries(strings.NewReader(tc.csvData))
			if err == nil {
				t.Fatal("parseSeries() did not return an error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("got error %q, want error containing %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestSeries_YearOverYear(t *testing.T) {
	series, err := parseSeries(strings.NewReader(cpiCSV))
	if err != nil {
		t.Fatalf("parseSeries() failed: %v", err)
	}
	rate, at, err := series.YearOverYear()
	if err != nil {
		t.Fatalf("YearOverYear() error = %v", err)
	}
	if want := 122.4/120.6 - 1; math.Abs(rate-want) > 1e-12 {
		t.Errorf("YearOverYear() = %v, want %v", rate, want)
	}
	if want := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC); !at.Equal(want) {
		t.Errorf("YearOverYear() measured on %v, want %v", at, want)
	}

	// February periods end on a different day every leap year.
	leap := &Series{IDBank: "x", Values: map[time.Time]float64{
		periodEnd(2024, time.February): 100,
		periodEnd(2025, time.February): 102,
	}}
	if rate, _, err := leap.YearOverYear(); err != nil || math.Abs(rate-0.02) > 1e-12 {
		t.Errorf("YearOverYear() across a leap year = %v, %v, want 0.02", rate, err)
	}

	gap := &Series{IDBank: "x", Values: map[time.Time]float64{periodEnd(2025, time.August): 100}}
	if _, _, err := gap.YearOverYear(); err == nil {
		t.Error("YearOverYear() without a value one year earlier did not fail")
	}
	if _, _, err := (&Series{}).YearOverYear(); err == nil {
		t.Error("YearOverYear() on an empty series did not fail")
	}
}

// zipped returns a zip archive holding content under name.
func zipped(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(f, content); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testClient(url string) *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Client{BaseURL: url, HTTP: http.DefaultClient, Logger: logger}
}

func TestClient_Inflation(t *testing.T) {
	archive := zipped(t, "valeurs_mensuelles.csv", cpiCSV)
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write(archive)
	}))
	defer srv.Close()

	now := time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC)
	rate, at, err := testClient(srv.URL).Inflation(context.Background(), DefaultSeries, now)
	if err != nil {
		t.Fatalf("Inflation() error = %v", err)
	}
	if gotPath != "/series/001759970/csv" {
		t.Errorf("requested %q, want /series/001759970/csv", gotPath)
	}
	if math.Abs(rate-(122.4/120.6-1)) > 1e-12 || at.Month() != time.August {
		t.Errorf("Inflation() = %v on %v", rate, at)
	}
}

func TestClient_Series_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) { http.Error(w, "nope", http.StatusNotFound) }, "received status"},
		{"not a zip", func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "plain text") }, "failed to open zip archive"},
		{"no values file", func(w http.ResponseWriter, r *http.Request) {
			w.Write(zipped(t, "caract.csv", ""))
		}, "could not find a values file"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			now := time.Now()
			_, err := testClient(srv.URL).Series(context.Background(), DefaultSeries, now.AddDate(-1, 0, 0), now)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Series() error = %v, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestDiskCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		io.WriteString(w, "cached body")
	}))
	defer srv.Close()

	client := &http.Client{Transport: &diskCache{base: http.DefaultTransport, dir: t.TempDir()}}
	for i := 0; i < 2; i++ {
		resp, err := client.Get(srv.URL + "/series")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if string(body) != "cached body" {
			t.Errorf("call %d: body = %q, want %q", i, body, "cached body")
		}
	}
	if calls != 1 {
		t.Errorf("server was called %d times, want 1", calls)
	}
}

func TestInflation_Live(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rate, at, err := NewClient().Inflation(context.Background(), DefaultSeries, time.Now())
	if err != nil {
		t.Fatalf("Inflation() failed: %v", err)
	}
	if rate < -0.2 || rate > 0.5 {
		t.Errorf("Inflation() = %v on %v, outside any plausible range", rate, at)
	}
}
