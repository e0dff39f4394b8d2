package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a download target does not exist.
	ErrNotFound = errors.New("storage: object not found")
	// ErrInvalidKey is returned for empty keys or keys that escape the root.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Storage persists generated assets and resolves them back into bytes.
// Upload returns the public URL clients can fetch the asset from.
type Storage interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
	Download(ctx context.Context, url string) ([]byte, error)
}
