// Package testutil provides a fake NeuroStream backend for tests
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// RecommendBody mirrors the POST /api/recommend payload
type RecommendBody struct {
	Type  string `json:"type"`
	Mode  string `json:"mode"`
	Query string `json:"query"`
	Page  int    `json:"page"`
}

// Request records one call the backend received
type Request struct {
	Method    string
	Path      string
	Query     string
	RequestID string
	UserAgent string
	Recommend *RecommendBody
}

// Backend is an httptest server routing the three API endpoints.
// Handlers can be swapped per test; the defaults serve Pages, Details and Trailers.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	requests []Request

	// Pages maps category -> page -> raw JSON array returned by /api/recommend
	Pages map[string]map[int]string
	// Details maps "category/id" -> raw JSON object
	Details map[string]string
	// Trailers maps title slug -> YouTube key
	Trailers map[string]string

	// RecommendHandler overrides the default /api/recommend behaviour when set
	RecommendHandler http.HandlerFunc
}

// NewBackend starts a fake backend. Call Close when done.
func NewBackend() *Backend {
	b := &Backend{
		Pages:    make(map[string]map[int]string),
		Details:  make(map[string]string),
		Trailers: make(map[string]string),
	}

	r := chi.NewRouter()
	r.Use(b.record)
	r.Post("/api/recommend", b.handleRecommend)
	r.Get("/api/details/{type}/{id}", b.handleDetails)
	r.Get("/api/trailer/{title}", b.handleTrailer)

	b.Server = httptest.NewServer(r)
	return b
}

// URL returns the base URL of the fake
func (b *Backend) URL() string {
	return b.Server.URL
}

// Close shuts the server down
func (b *Backend) Close() {
	b.Server.Close()
}

// Requests returns a copy of every request received so far
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// SetPage registers the raw JSON returned for a category page
func (b *Backend) SetPage(category string, page int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Pages[category] == nil {
		b.Pages[category] = make(map[int]string)
	}
	b.Pages[category][page] = body
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			RequestID: r.Header.Get("X-Request-ID"),
			UserAgent: r.Header.Get("User-Agent"),
		}
		if r.Method == http.MethodPost {
			data, _ := io.ReadAll(r.Body)
			_ = r.Body.Close()
			var body RecommendBody
			if json.Unmarshal(data, &body) == nil {
				req.Recommend = &body
			}
			r.Body = io.NopCloser(bytes.NewReader(data))
		}
		b.mu.Lock()
		b.requests = append(b.requests, req)
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if b.RecommendHandler != nil {
		b.RecommendHandler(w, r)
		return
	}
	var body RecommendBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, `{"error":"bad request"}`)
		return
	}
	b.mu.Lock()
	pages, ok := b.Pages[body.Type]
	var page string
	if ok {
		page = pages[body.Page]
	}
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusBadRequest, `{"error":"Invalid media type"}`)
		return
	}
	if page == "" {
		page = "[]"
	}
	writeJSON(w, http.StatusOK, page)
}

func (b *Backend) handleDetails(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "type") + "/" + chi.URLParam(r, "id")
	b.mu.Lock()
	body, ok := b.Details[key]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, `{"error":"Game not found"}`)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (b *Backend) handleTrailer(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	key, ok := b.Trailers[chi.URLParam(r, "title")]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, `{"error":"Not found"}`)
		return
	}
	writeJSON(w, http.StatusOK, `{"key":"`+key+`"}`)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
