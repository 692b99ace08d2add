// Package insee reads consumer price index series published by INSEE and
// derives annual inflation rates from them.
package insee

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultSeries is the idBank of the monthly consumer price index of all
// French households (IPC, ensemble des ménages).
const DefaultSeries = "001759970"

const defaultBaseURL = "https://bdm.insee.fr"

// Client downloads INSEE series.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  logrus.FieldLogger
}

// NewClient returns a client for the public INSEE service, caching downloads
// on disk for the day.
func NewClient() *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		HTTP:    daily(),
		Logger:  logrus.StandardLogger(),
	}
}

// Series downloads the values of series idBank published between from and to.
func (c *Client) Series(ctx context.Context, idBank string, from, to time.Time) (*Series, error) {
	startQuarter := (int(from.Month())-1)/3 + 1
	endQuarter := (int(to.Month())-1)/3 + 1

	url := fmt.Sprintf("%s/series/%s/csv?lang=fr&ordre=antechronologique&transposition=donneescolonne&periodeDebut=%d&anneeDebut=%d&periodeFin=%d&anneeFin=%d&revision=sansrevisions",
		c.BaseURL,
		idBank,
		startQuarter,
		from.Year(),
		endQuarter,
		to.Year(),
	)
	c.Logger.WithField("url", url).Debug("downloading from INSEE")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download from INSEE for ID %s: %w", idBank, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download from INSEE for ID %s: received status %s", idBank, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	zipReader, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive from INSEE response: %w", err)
	}

	var foundFiles []string
	for _, f := range zipReader.File {
		filename := f.Name
		foundFiles = append(foundFiles, filename)
		if filename == "valeurs_trimestrielles.csv" || filename == "valeurs_mensuelles.csv" {
			c.Logger.WithField("file", filename).Debug("found INSEE values")
			csvFile, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open '%s' from zip archive: %w", filename, err)
			}
			defer csvFile.Close()
			return parseSeries(csvFile)
		}
	}

	return nil, fmt.Errorf("could not find a values file (mensuelles or trimestrielles) in downloaded zip file for ID %s (found: %s)", idBank, strings.Join(foundFiles, ", "))
}

// Inflation returns the latest year-over-year change of the price index idBank,
// as a rate (0.012 for 1.2%), and the end of the period it was measured on.
func (c *Client) Inflation(ctx context.Context, idBank string, now time.Time) (float64, time.Time, error) {
	// two years back covers publication delays.
	series, err := c.Series(ctx, idBank, now.AddDate(-2, 0, 0), now)
	if err != nil {
		return 0, time.Time{}, err
	}
	return series.YearOverYear()
}

// Series holds the data from an INSEE time series CSV file.
type Series struct {
	Libelle    string
	IDBank     string
	LastUpdate time.Time
	Values     map[time.Time]float64 // by period end, at midnight UTC
}

// YearOverYear returns the change between the latest value and the value one
// year before it, and the end of the latest period.
func (s *Series) YearOverYear() (float64, time.Time, error) {
	if len(s.Values) == 0 {
		return 0, time.Time{}, errors.New("series has no values")
	}
	dates := make([]time.Time, 0, len(s.Values))
	for d := range s.Values {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	latest := dates[len(dates)-1]
	before := periodEnd(latest.Year()-1, latest.Month())
	base, ok := s.Values[before]
	if !ok {
		return 0, time.Time{}, fmt.Errorf("series %s has no value on %s, one year before %s", s.IDBank, before.Format(time.DateOnly), latest.Format(time.DateOnly))
	}
	if base == 0 {
		return 0, time.Time{}, fmt.Errorf("series %s is zero on %s", s.IDBank, before.Format(time.DateOnly))
	}
	return s.Values[latest]/base - 1, latest, nil
}

// periodEnd returns the last day of the given month.
func periodEnd(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
}

// parseInseeDate parses a string like "2025-T2" or "2025-08" into the end of that period.
func parseInseeDate(s string) (time.Time, error) {
	// Try quarterly format: "YYYY-TQ"
	if strings.Contains(s, "-T") {
		return parseQuarterlyDate(s)
	}

	// Try monthly format: "YYYY-MM"
	parts := strings.Split(s, "-")
	if len(parts) == 2 {
		year, err := strconv.Atoi(parts[0])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid year in monthly date %q: %w", s, err)
		}
		month, err := strconv.Atoi(parts[1])
		if err != nil || month < 1 || month > 12 {
			return time.Time{}, fmt.Errorf("invalid month in monthly date %q: %v", s, err)
		}
		return periodEnd(year, time.Month(month)), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized insee date format: %q", s)
}

// parseQuarterlyDate parses a string like "2025-T2" into the end of that quarter.
func parseQuarterlyDate(s string) (time.Time, error) {
	parts := strings.Split(s, "-T")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid quarterly date format: %q", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in quarterly date %q: %w", s, err)
	}

	quarter, err := strconv.Atoi(parts[1])
	if err != nil || quarter < 1 || quarter > 4 {
		return time.Time{}, fmt.Errorf("invalid quarter in quarterly date %q: %v", s, err)
	}
	return periodEnd(year, time.Month(quarter*3)), nil
}

// parseSeries reads the INSEE CSV format from an io.Reader.
func parseSeries(r io.Reader) (*Series, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	if len(records) < 4 {
		return nil, fmt.Errorf("not enough records in csv to parse series")
	}

	series := &Series{
		Libelle: records[0][1],
		IDBank:  records[1][1],
		Values:  make(map[time.Time]float64),
	}

	series.LastUpdate, err = time.Parse("02/01/2006 15:04", records[2][1])
	if err != nil {
		return nil, fmt.Errorf("failed to parse last update date %q: %w", records[2][1], err)
	}

	for i := 4; i < len(records); i++ {
		if len(records[i]) > 1 && records[i][1] != "" {
			date, err := parseInseeDate(records[i][0])
			if err != nil {
				// Don't wrap, parseInseeDate provides good context
				return nil, err
			}
			val, err := strconv.ParseFloat(records[i][1], 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse value %q for date %q: %w", records[i][1], records[i][0], err)
			}
			series.Values[date] = val
		}
	}
	return series, nil
}
