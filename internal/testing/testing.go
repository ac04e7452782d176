// package testing contains shared testing utilities: failing writers and readers,
// file assertions and a fake Subsonic server.
package testing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

// NewLimitedWriter returns a writer that forwards maxWrites-written writes to target and then fails.
func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper is an [http.RoundTripper] returning a fixed response or error
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// AssertFileExists fails the test when nothing exists at path.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

// AssertDirExists fails the test unless path is a directory.
func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

// MustReadFile returns the contents of path, stopping the test when it cannot be read.
func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// SubsonicRoutes maps a Subsonic endpoint name ("ping", "search3", ...) to the fields
// merged into its "ok" response.
type SubsonicRoutes map[string]map[string]any

// NewSubsonicServer starts an httptest server answering "/rest/{endpoint}.view" from routes.
//
// Unknown endpoints get a Subsonic error response (code 70). Requests are recorded
// as "endpoint?query" in the returned slice pointer.
func NewSubsonicServer(t *testing.T, routes SubsonicRoutes) (*httptest.Server, *[]string) {
	t.Helper()

	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/rest/"), ".view")
		requests = append(requests, endpoint+"?"+r.URL.RawQuery)

		payload := map[string]any{"status": "ok", "version": "1.16.1"}
		body, ok := routes[endpoint]
		if !ok {
			payload["status"] = "failed"
			payload["error"] = map[string]any{"code": 70, "message": "not found: " + endpoint}
		}
		for k, v := range body {
			payload[k] = v
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"subsonic-response": payload})
	}))
	t.Cleanup(server.Close)
	return server, &requests
}
