package upload

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrTooLarge is returned when a file exceeds the size limit.
var ErrTooLarge = errors.New("upload: file too large")

// ErrUnsupportedType is returned for non-image content types.
var ErrUnsupportedType = errors.New("upload: unsupported content type")

// Store is a storage backend for profile pictures. Save writes the
// file and returns its public URL.
type Store interface {
	Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (url string, err error)
}

// Config limits what the handler accepts.
type Config struct {
	// MaxFileSize in bytes. Default 10MB.
	MaxFileSize int64

	// AllowedTypes restricts content types. Empty means any image/*.
	AllowedTypes []string
}

// DefaultConfig returns the handler defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxFileSize: 10 << 20,
	}
}

// Allowed reports whether contentType passes the config's type filter.
func (c *Config) Allowed(contentType string) bool {
	if len(c.AllowedTypes) == 0 {
		return strings.HasPrefix(contentType, "image/")
	}
	for _, t := range c.AllowedTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}
