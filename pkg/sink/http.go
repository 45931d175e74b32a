package sink

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ServeEntry writes entry as the response, answering a matching
// If-None-Match with 304 Not Modified.
func ServeEntry(w http.ResponseWriter, r *http.Request, entry *Entry) {
	h := w.Header()
	h.Set("ETag", entry.ETag)
	h.Set("Last-Modified", entry.StoredAt.UTC().Format(http.TimeFormat))
	h.Set("Cache-Control", "no-cache")
	if !entry.Expires.IsZero() {
		h.Set("Expires", entry.Expires.UTC().Format(http.TimeFormat))
	}

	if etagMatches(r.Header.Get("If-None-Match"), entry.ETag) {
		NotModifiedResponses.Inc()
		w.WriteHeader(http.StatusNotModified)
		return
	}

	contentType := entry.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(entry.Data)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(entry.Data)
	}
}

// Handler serves documents from reader by the {name} path value.
func Handler(reader Reader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		entry, err := reader.Load(r.Context(), name)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			log.Error().
				Err(err).
				Str("component", "sink").
				Str("name", name).
				Msg("Failed to load document")
			http.Error(w, "failed to load document", http.StatusInternalServerError)
			return
		}

		ServeEntry(w, r, entry)
	})
}

// etagMatches implements the weak comparison of If-None-Match.
func etagMatches(header, etag string) bool {
	if header == "" || etag == "" {
		return false
	}
	if strings.TrimSpace(header) == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == strings.TrimPrefix(etag, "W/") {
			return true
		}
	}
	return false
}
