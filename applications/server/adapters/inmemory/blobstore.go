package inmemory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/venturelink/fileserve/applications/server/domain"
)

// gridfs default chunk size, reported in Stat for parity with the real store.
const defaultChunkSize = 255 * 1024

// BlobStore keeps blobs in memory. Used for local runs and tests.
type BlobStore struct {
	blobs map[string]storedBlob
	log   log.Logger
	mutex sync.RWMutex
}

type storedBlob struct {
	info domain.BlobInfo
	data []byte
}

func NewBlobStore(logger log.Logger) *BlobStore {
	return &BlobStore{
		blobs: map[string]storedBlob{},
		log:   logger,
	}
}

func (s *BlobStore) Create(ctx context.Context, blob domain.BlobCreate, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	contentType := blob.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := primitive.NewObjectID().Hex()

	s.mutex.Lock()
	s.blobs[id] = storedBlob{
		info: domain.BlobInfo{
			ID:          id,
			Filename:    blob.Filename,
			Length:      int64(len(data)),
			ChunkSize:   defaultChunkSize,
			UploadDate:  time.Now().UTC(),
			ContentType: contentType,
			MimeType:    blob.MimeType,
			ExpireAt:    blob.ExpireAt,
		},
		data: data,
	}
	s.mutex.Unlock()

	level.Info(s.log).Log("msg", "blob stored",
		"id", id,
		"filename", blob.Filename,
		"size", humanize.Bytes(uint64(len(data))),
	)

	return id, nil
}

func (s *BlobStore) Open(ctx context.Context, id string) (domain.Blob, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	b, ok := s.blobs[id]
	if !ok {
		return domain.Blob{}, domain.ErrBlobNotFound
	}

	return domain.Blob{
		Info: b.info,
		Body: io.NopCloser(bytes.NewReader(b.data)),
	}, nil
}

func (s *BlobStore) Stat(ctx context.Context, id string) (domain.BlobInfo, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	b, ok := s.blobs[id]
	if !ok {
		return domain.BlobInfo{}, domain.ErrBlobNotFound
	}

	return b.info, nil
}

// Len reports the number of stored blobs.
func (s *BlobStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.blobs)
}
