package server

import (
	"context"

	"github.com/venturelink/fileserve/applications/server/domain"
)

type FileService interface {
	Upload(ctx context.Context, file domain.UploadedFile, opts domain.UploadOptions) (string, error)
	Fetch(ctx context.Context, id string) (domain.Blob, error)
	Info(ctx context.Context, id string) (domain.BlobInfo, error)
	CleanupFiles(paths []string)
}
