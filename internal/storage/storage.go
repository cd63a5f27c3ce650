package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidKey is returned for keys that cannot name an asset.
var ErrInvalidKey = errors.New("invalid asset key")

// Storage resolves opaque asset keys, such as a product image, held by the
// asset store. The catalog never reads or writes file bytes.
type Storage interface {
	// URL returns the public URL for key.
	URL(ctx context.Context, key string) (string, error)

	// Exists reports whether the asset store holds key.
	Exists(ctx context.Context, key string) (bool, error)
}

// ValidateKey rejects empty keys, absolute paths and parent references.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "://") {
		return ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
