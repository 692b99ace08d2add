package insee

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// diskCache is an http.RoundTripper keeping successful responses in the
// temporary directory until the end of the day.
type diskCache struct {
	base http.RoundTripper
	dir  string
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	// one key per day, so that the cache expires every day.
	key := fmt.Sprintf("%s %s %s", time.Now().Format(time.DateOnly), req.Method, req.URL.String())
	key = fmt.Sprintf("insee-%x", sha1.Sum([]byte(key)))

	if cached, err := c.get(key, req); err == nil {
		return cached, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"method": resp.Request.Method,
		"host":   resp.Request.URL.Host,
		"path":   resp.Request.URL.Path,
		"status": resp.Status,
	}).Debug("insee request")
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		logrus.WithError(err).Warn("insee cache write failed (ignored)")
	}
	return resp, nil
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk; the response body stays readable.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}

// daily returns a client whose responses are cached for the day.
func daily() *http.Client {
	return &http.Client{
		Transport: &diskCache{base: http.DefaultTransport, dir: os.TempDir()},
		Timeout:   time.Minute,
	}
}
