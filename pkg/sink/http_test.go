package sink

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stubReader struct {
	entries map[string]*Entry
	err     error
}

func (r *stubReader) Load(_ context.Context, name string) (*Entry, error) {
	if r.err != nil {
		return nil, r.err
	}
	entry, ok := r.entries[name]
	if !ok {
		return nil, ErrNotFound
	}
	return entry, nil
}

func newTestMux(reader Reader) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /feeds/{name}", Handler(reader))
	return mux
}

func TestHandler(t *testing.T) {
	entry := NewEntry([]byte("<tweakwise/>"), "application/xml; charset=utf-8", time.Hour)
	mux := newTestMux(&stubReader{entries: map[string]*Entry{"feed.xml": entry}})

	tests := []struct {
		name        string
		path        string
		ifNoneMatch string
		wantStatus  int
		wantBody    string
	}{
		{name: "stored document", path: "/feeds/feed.xml", wantStatus: http.StatusOK, wantBody: "<tweakwise/>"},
		{name: "matching etag", path: "/feeds/feed.xml", ifNoneMatch: entry.ETag, wantStatus: http.StatusNotModified},
		{name: "weak matching etag", path: "/feeds/feed.xml", ifNoneMatch: `"other", W/` + entry.ETag, wantStatus: http.StatusNotModified},
		{name: "stale etag", path: "/feeds/feed.xml", ifNoneMatch: `"stale"`, wantStatus: http.StatusOK, wantBody: "<tweakwise/>"},
		{name: "missing document", path: "/feeds/other.xml", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.ifNoneMatch != "" {
				req.Header.Set("If-None-Match", tt.ifNoneMatch)
			}
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if tt.wantStatus != http.StatusNotFound && rec.Header().Get("ETag") != entry.ETag {
				t.Errorf("ETag header = %q, want %q", rec.Header().Get("ETag"), entry.ETag)
			}
		})
	}
}

func TestHandler_ContentType(t *testing.T) {
	entry := NewEntry([]byte("<tweakwise/>"), "application/xml; charset=utf-8", 0)
	mux := newTestMux(&stubReader{entries: map[string]*Entry{"feed.xml": entry}})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feeds/feed.xml", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/xml; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("Expires") != "" {
		t.Error("entry without expiry should not send Expires")
	}
}

func TestHandler_LoadError(t *testing.T) {
	mux := newTestMux(&stubReader{err: errors.New("redis get: connection refused")})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feeds/feed.xml", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestEtagMatches(t *testing.T) {
	tests := []struct {
		header   string
		etag     string
		expected bool
	}{
		{header: "", etag: `"a"`, expected: false},
		{header: `"a"`, etag: `"a"`, expected: true},
		{header: `"b", "a"`, etag: `"a"`, expected: true},
		{header: `W/"a"`, etag: `"a"`, expected: true},
		{header: "*", etag: `"a"`, expected: true},
		{header: `"b"`, etag: `"a"`, expected: false},
	}

	for _, tt := range tests {
		if got := etagMatches(tt.header, tt.etag); got != tt.expected {
			t.Errorf("etagMatches(%q, %q) = %v, want %v", tt.header, tt.etag, got, tt.expected)
		}
	}
}
