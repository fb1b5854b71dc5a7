package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"odonto-console/internal/api"
)

// fakeBackend routes "METHOD /path" to handlers and records every request.
type fakeBackend struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []*http.Request
	bodies   []map[string]any
}

func newFakeBackend(t *testing.T) (*fakeBackend, *api.Client) {
	t.Helper()
	fb := &fakeBackend{routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&body)
		}
		fb.mu.Lock()
		fb.requests = append(fb.requests, r)
		fb.bodies = append(fb.bodies, body)
		h, ok := fb.routes[r.Method+" "+r.URL.Path]
		fb.mu.Unlock()
		if !ok {
			http.Error(w, `{"message":"rota não encontrada"}`, http.StatusNotFound)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return fb, api.NewClient(srv.URL+"/api", 5*time.Second, zerolog.Nop())
}

func (fb *fakeBackend) on(method, path string, h http.HandlerFunc) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[method+" /api"+path] = h
}

func (fb *fakeBackend) count() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.requests)
}

func (fb *fakeBackend) json(method, path string, status int, payload string) {
	fb.on(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(payload))
	})
}

func (fb *fakeBackend) last() (*http.Request, map[string]any) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	n := len(fb.requests)
	return fb.requests[n-1], fb.bodies[n-1]
}
