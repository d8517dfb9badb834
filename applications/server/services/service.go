package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/venturelink/fileserve/applications/server"
	"github.com/venturelink/fileserve/applications/server/domain"
	"github.com/venturelink/fileserve/applications/server/interfaces"
	"github.com/venturelink/fileserve/applications/server/metrics"
)

type service struct {
	blobs    interfaces.BlobStore
	profiles interfaces.ProfileStore
	log      log.Logger
}

func NewService(blobs interfaces.BlobStore, profiles interfaces.ProfileStore, logger log.Logger) server.FileService {
	return &service{
		blobs:    blobs,
		profiles: profiles,
		log:      logger,
	}
}

// Upload streams the validated temp file into the blob store, patches the
// owner profile document when the document type asks for one, and removes
// the temp file on every path. A blob already written when the owner patch
// fails is left in place; the store's own expiry reclaims orphans.
func (s *service) Upload(ctx context.Context, file domain.UploadedFile, opts domain.UploadOptions) (string, error) {
	defer s.CleanupFiles([]string{file.Path})

	f, err := os.Open(file.Path)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("can't open temp file: %w", err)
	}

	blob := domain.BlobCreate{
		Filename: file.OriginalName,
		MimeType: file.MimeType,
	}
	if opts.ExpiresIn > 0 {
		expireAt := time.Now().UTC().Add(opts.ExpiresIn)
		blob.ExpireAt = &expireAt
	}

	size := int64(0)
	if fi, statErr := f.Stat(); statErr == nil {
		size = fi.Size()
	}

	id, err := s.blobs.Create(ctx, blob, f)
	f.Close()
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("can't store blob: %w", err)
	}

	if err = s.patchOwner(ctx, id, opts); err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("can't link blob to owner: %w", err)
	}

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	metrics.UploadBytesTotal.Add(float64(size))

	return id, nil
}

// patchOwner sets exactly one blob-reference field on at most one owner
// document. Startups take either field by document type; investors only
// ever get their logo patched.
func (s *service) patchOwner(ctx context.Context, fileID string, opts domain.UploadOptions) error {
	switch {
	case opts.DocumentType == domain.DocumentProfilePicture && opts.UserID != "":
		return s.profiles.SetUserProfilePicture(ctx, opts.UserID, fileID)

	case (opts.DocumentType == domain.DocumentLogo || opts.DocumentType == domain.DocumentPitchDeck) && opts.ProfileID != "":
		if opts.ProfileType == domain.ProfileStartup {
			if opts.DocumentType == domain.DocumentLogo {
				return s.profiles.SetStartupLogo(ctx, opts.ProfileID, fileID)
			}

			return s.profiles.SetStartupPitchDeck(ctx, opts.ProfileID, fileID)
		}

		return s.profiles.SetInvestorLogo(ctx, opts.ProfileID, fileID)
	}

	return nil
}

func (s *service) Fetch(ctx context.Context, id string) (domain.Blob, error) {
	blob, err := s.blobs.Open(ctx, id)
	if err != nil {
		return domain.Blob{}, err
	}

	return blob, nil
}

func (s *service) Info(ctx context.Context, id string) (domain.BlobInfo, error) {
	return s.blobs.Stat(ctx, id)
}

// CleanupFiles removes local temp files best-effort. Missing files are not
// an error, which makes repeated cleanup of the same paths safe.
func (s *service) CleanupFiles(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			level.Warn(s.log).Log("msg", "can't remove temp file",
				"path", path,
				"err", err,
			)
		}
	}
}
