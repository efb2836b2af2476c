// Package testing holds shared fixtures for recipeviz tests: sample datasets
// and a fake search backend that also serves node images.
package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/teranos/recipeviz/graph"
	"github.com/teranos/recipeviz/internal/util"
)

// ChainDataset is the three-node scenario A -> B -> C: Water and Fire combine
// into Steam, with edges 1->2 and 2->3. Image links are relative.
func ChainDataset() *graph.Dataset {
	return &graph.Dataset{
		Images: []graph.ImageInfo{
			{ID: 1, Name: "Water", Link: "Water_2.svg", Row: 0, Col: 0},
			{ID: 2, Name: "Fire", Link: "Fire_2.svg", Row: 0, Col: 100},
			{ID: 3, Name: "Steam", Link: "Steam_2.svg", Row: 100, Col: 50},
		},
		Lines: []graph.LineInfo{
			{FromID: util.Ptr(1), ToID: util.Ptr(2)},
			{FromID: util.Ptr(2), ToID: util.Ptr(3)},
		},
		NodesVisited: 12,
		ExecutionMS:  3,
	}
}

// WriteDataset stores ds under t.TempDir() as JSON or YAML depending on ext
func WriteDataset(t *testing.T, ds *graph.Dataset, ext string) string {
	t.Helper()

	var data []byte
	var err error
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(ds)
	default:
		data, err = json.Marshal(ds)
	}
	if err != nil {
		t.Fatalf("encode dataset: %v", err)
	}

	path := filepath.Join(t.TempDir(), "dataset"+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

// BackendRequest is a search request as received by the fake backend
type BackendRequest struct {
	Target string `json:"target"`
	Method string `json:"method"`
	Option string `json:"option"`
	Count  int    `json:"count"`
}

// FakeBackend is an httptest server answering POST /api with a dataset and
// GET /images/<name> with a tiny SVG. Registered for cleanup on t.
type FakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	dataset  *graph.Dataset
	status   int
	requests []BackendRequest
	missing  map[string]bool
	gate     chan struct{}
}

// NewFakeBackend starts a backend serving ds
func NewFakeBackend(t *testing.T, ds *graph.Dataset) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		dataset: ds,
		status:  http.StatusOK,
		missing: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api", b.handleSearch)
	mux.HandleFunc("/images/", b.handleImage)
	b.Server = httptest.NewServer(mux)
	t.Cleanup(func() {
		b.Release()
		b.Server.Close()
	})
	return b
}

// ImageBaseURL is the base that relative dataset links resolve against
func (b *FakeBackend) ImageBaseURL() string { return b.URL + "/images/" }

// SetStatus makes /api answer with status (non-2xx returns no dataset)
func (b *FakeBackend) SetStatus(status int) {
	b.mu.Lock()
	b.status = status
	b.mu.Unlock()
}

// MissingImage makes /images/<name> answer 404
func (b *FakeBackend) MissingImage(name string) {
	b.mu.Lock()
	b.missing[name] = true
	b.mu.Unlock()
}

// Hold makes /api block until Release is called
func (b *FakeBackend) Hold() {
	b.mu.Lock()
	b.gate = make(chan struct{})
	b.mu.Unlock()
}

// Release unblocks held /api requests
func (b *FakeBackend) Release() {
	b.mu.Lock()
	if b.gate != nil {
		close(b.gate)
		b.gate = nil
	}
	b.mu.Unlock()
}

// Requests returns the search requests received so far
func (b *FakeBackend) Requests() []BackendRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]BackendRequest(nil), b.requests...)
}

func (b *FakeBackend) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req BackendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.requests = append(b.requests, req)
	status, ds, gate := b.status, b.dataset, b.gate
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	if status < 200 || status > 299 {
		http.Error(w, "backend failure", status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ds)
}

func (b *FakeBackend) handleImage(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/images/")
	b.mu.Lock()
	missing := b.missing[name]
	b.mu.Unlock()
	if missing || name == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg" width="60" height="60"/>`))
}
