package interfaces

import (
	"context"
	"io"

	"github.com/venturelink/fileserve/applications/server/domain"
)

// BlobStore is a chunked binary object store keyed by generated id.
// Create streams body into a new immutable blob and returns its id.
// Open and Stat return domain.ErrBlobNotFound for unknown ids.
type BlobStore interface {
	Create(ctx context.Context, blob domain.BlobCreate, body io.Reader) (string, error)
	Open(ctx context.Context, id string) (domain.Blob, error)
	Stat(ctx context.Context, id string) (domain.BlobInfo, error)
}
