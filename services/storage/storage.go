package storage

import "context"

// ArtifactStore is the external storage collaborator for submission
// artifacts. Keys are caller-supplied deterministic path strings; there is
// no versioning.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
