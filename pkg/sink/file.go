package sink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSink writes documents into a directory.
type FileSink struct {
	dir          string
	publicPrefix string
}

// NewFileSink creates a file sink writing into dir. Returned URLs are
// publicPrefix joined with the document name.
func NewFileSink(dir, publicPrefix string) *FileSink {
	return &FileSink{
		dir:          dir,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
	}
}

// Store writes data to dir/name through a temporary file, so readers never
// see a partial document.
func (s *FileSink) Store(_ context.Context, name string, data []byte, _ string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		SinkErrors.WithLabelValues("file", "store").Inc()
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		SinkErrors.WithLabelValues("file", "store").Inc()
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		SinkErrors.WithLabelValues("file", "store").Inc()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		SinkErrors.WithLabelValues("file", "store").Inc()
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		SinkErrors.WithLabelValues("file", "store").Inc()
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		SinkErrors.WithLabelValues("file", "store").Inc()
		return "", fmt.Errorf("rename document: %w", err)
	}

	DocumentsStored.WithLabelValues("file").Inc()
	StoredBytes.WithLabelValues("file").Set(float64(len(data)))

	return s.publicPrefix + "/" + name, nil
}

// Load reads dir/name. The content type is taken from the file extension.
func (s *FileSink) Load(_ context.Context, name string) (*Entry, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		SinkErrors.WithLabelValues("file", "load").Inc()
		return nil, fmt.Errorf("read document: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		SinkErrors.WithLabelValues("file", "load").Inc()
		return nil, fmt.Errorf("stat document: %w", err)
	}

	return &Entry{
		Data:        data,
		ETag:        ETag(data),
		ContentType: contentTypeFor(name),
		StoredAt:    info.ModTime().UTC(),
	}, nil
}

func contentTypeFor(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".xml") {
		return "application/xml; charset=utf-8"
	}
	return "application/octet-stream"
}
