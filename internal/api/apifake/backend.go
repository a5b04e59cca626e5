// Package apifake is an in-process stand-in for the estate backend, used by
// tests of every HTTP client in the module.
package apifake

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// Recorded is one request the backend received.
type Recorded struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Backend routes requests by exact method and path. Unrouted requests get a
// 404 with a FastAPI-style detail body.
type Backend struct {
	server *httptest.Server

	lock     sync.RWMutex
	handlers map[string]http.HandlerFunc
	requests []Recorded
}

// New starts a backend that is closed when the test ends.
func New(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{handlers: make(map[string]http.HandlerFunc)}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)
	return b
}

func (b *Backend) URL() string {
	return b.server.URL
}

// Close stops the server early, to simulate an unreachable backend.
func (b *Backend) Close() {
	b.server.Close()
}

// Handle routes method+path to h, replacing any previous handler.
func (b *Backend) Handle(method, path string, h http.HandlerFunc) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.handlers[method+" "+path] = h
}

// JSON routes method+path to a fixed JSON response.
func (b *Backend) JSON(method, path string, status int, body any) {
	b.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Calls counts the requests received for method+path.
func (b *Backend) Calls(method, path string) int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	n := 0
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Total counts every request received.
func (b *Backend) Total() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return len(b.requests)
}

// Last returns the most recent request for method+path, or nil.
func (b *Backend) Last(method, path string) *Recorded {
	b.lock.RLock()
	defer b.lock.RUnlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if r := b.requests[i]; r.Method == method && r.Path == path {
			return &r
		}
	}
	return nil
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	b.lock.Lock()
	b.requests = append(b.requests, Recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	h, ok := b.handlers[r.Method+" "+r.URL.Path]
	b.lock.Unlock()

	if !ok {
		WriteJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
		return
	}
	h(w, r)
}

// WriteJSON writes v as a JSON response with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
