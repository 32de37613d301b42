package object

import (
	"context"
	"io"
)

// BlobRef describes a stored blob: where it can be fetched publicly and the
// opaque identifier used for later deletion.
type BlobRef struct {
	URL       string
	StorageID string
	SizeBytes int64
	MimeType  string
}

// ObjectStore defines the contract for saving, retrieving and deleting binary objects.
type ObjectStore interface {
	Upload(ctx context.Context, fileName string, r io.Reader) (BlobRef, error)
	Open(ctx context.Context, storageID string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageID string) error
}
