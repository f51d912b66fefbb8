package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/projecthub/internal/domain"
)

// RecordedRequest is a copy of what the fake backend received
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Backend is an httptest server routed with chi that records every request
type Backend struct {
	Server *httptest.Server
	Router chi.Router

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewBackend starts a fake backend that is closed when the test ends
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{Router: chi.NewRouter()}
	b.Router.Use(b.record)
	b.Server = httptest.NewServer(b.Router)
	t.Cleanup(b.Server.Close)

	return b
}

// URL returns the server root
func (b *Backend) URL() string {
	return b.Server.URL
}

// Handle registers a handler for method and chi pattern
func (b *Backend) Handle(method, pattern string, h http.HandlerFunc) {
	b.Router.MethodFunc(method, pattern, h)
}

// Requests returns every request received so far
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// Last returns the most recent request; it fails the test if there is none
func (b *Backend) Last(t *testing.T) RecordedRequest {
	t.Helper()
	reqs := b.Requests()
	if len(reqs) == 0 {
		t.Fatal("backend received no requests")
	}
	return reqs[len(reqs)-1]
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		b.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// WriteEnvelope responds with a success envelope around data
func WriteEnvelope(w http.ResponseWriter, status int, data interface{}) {
	raw, _ := json.Marshal(data)
	writeJSON(w, status, domain.Envelope{Status: domain.StatusSuccess, Data: raw})
}

// WriteError responds with an error envelope
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, domain.Envelope{Status: domain.StatusError, Code: code, Message: message, Data: json.RawMessage("null")})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
