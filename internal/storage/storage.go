// Package storage abstracts the object store media uploads land in:
// upload-by-key plus public-URL resolution.
package storage

import (
	"context"
	"io"
)

// Store is the object-storage contract consumed by the media handler.
type Store interface {
	Upload(ctx context.Context, key string, r io.Reader) (string, error)
	PublicURL(key string) string
}
