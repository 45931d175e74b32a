package sink

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no document is stored under the requested name
	ErrNotFound = errors.New("document not found")

	// ErrInvalidEntry indicates the stored entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid document entry")
)

// Sink stores a document and returns the URL it is retrievable at.
type Sink interface {
	Store(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Reader loads a stored document.
type Reader interface {
	Load(ctx context.Context, name string) (*Entry, error)
}

// Entry is a stored document.
type Entry struct {
	// Data is the document body
	Data []byte `json:"data"`

	// ETag identifies the body for conditional requests (If-None-Match)
	ETag string `json:"etag"`

	// ContentType is served as the Content-Type header
	ContentType string `json:"content_type"`

	// StoredAt is when the document was stored
	StoredAt time.Time `json:"stored_at"`

	// Expires is when the entry is dropped; zero means never
	Expires time.Time `json:"expires"`
}

// NewEntry creates an entry for data stored now with the given TTL.
// A TTL of zero never expires.
func NewEntry(data []byte, contentType string, ttl time.Duration) *Entry {
	now := time.Now().UTC()
	e := &Entry{
		Data:        data,
		ETag:        ETag(data),
		ContentType: contentType,
		StoredAt:    now,
	}
	if ttl > 0 {
		e.Expires = now.Add(ttl)
	}
	return e
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return !e.Expires.IsZero() && time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 for entries that never expire or are already expired.
func (e *Entry) TTL() time.Duration {
	if e.Expires.IsZero() {
		return 0
	}
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// ETag returns a strong entity tag for data.
func ETag(data []byte) string {
	sum := sha256.Sum256(data)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}
