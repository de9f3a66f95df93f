package storage

import (
	"context"
	"io"
)

// FileUploader stores binary objects (player avatars) under string keys.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	// PublicURL builds the browser-reachable URL for a stored key.
	PublicURL(key string) string
}
