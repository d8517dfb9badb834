package mongodb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/venturelink/fileserve/applications/server/domain"
	"github.com/venturelink/fileserve/applications/server/interfaces"
)

const defaultContentType = "application/octet-stream"

// blobDoc is the GridFS files-collection document shape.
type blobDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Length     int64              `bson:"length"`
	ChunkSize  int32              `bson:"chunkSize"`
	UploadDate time.Time          `bson:"uploadDate"`
	Filename   string             `bson:"filename"`
	Metadata   blobMetadata       `bson:"metadata"`
}

type blobMetadata struct {
	Mimetype   string     `bson:"mimetype,omitempty"`
	Expiration *time.Time `bson:"expiration,omitempty"`
}

type blobStore struct {
	bucket *gridfs.Bucket
	files  *mongo.Collection
	log    log.Logger
}

// NewBlobStore opens a GridFS bucket on db and ensures the TTL index that
// lets the database reclaim blobs tagged with metadata.expiration. An index
// failure is logged but not fatal.
func NewBlobStore(ctx context.Context, db *mongo.Database, bucketName string, logger log.Logger) (interfaces.BlobStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("can't open gridfs bucket: %w", err)
	}

	s := &blobStore{
		bucket: bucket,
		files:  bucket.GetFilesCollection(),
		log:    logger,
	}

	_, err = s.files.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "metadata.expiration", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		level.Warn(logger).Log("msg", "can't create blob expiration index", "err", err)
	}

	return s, nil
}

func (s *blobStore) Create(ctx context.Context, blob domain.BlobCreate, body io.Reader) (string, error) {
	if dl, ok := ctx.Deadline(); ok {
		if err := s.bucket.SetWriteDeadline(dl); err != nil {
			return "", fmt.Errorf("can't set write deadline: %w", err)
		}
	}

	opts := options.GridFSUpload().SetMetadata(blobMetadata{
		Mimetype:   blob.MimeType,
		Expiration: blob.ExpireAt,
	})

	us, err := s.bucket.OpenUploadStream(blob.Filename, opts)
	if err != nil {
		return "", fmt.Errorf("can't open upload stream: %w", err)
	}

	n, err := io.Copy(us, body)
	if err != nil {
		// Abort drops the chunks written so far.
		if abortErr := us.Abort(); abortErr != nil {
			level.Warn(s.log).Log("msg", "can't abort upload stream", "err", abortErr)
		}

		return "", fmt.Errorf("can't write blob: %w", err)
	}

	if err = us.Close(); err != nil {
		return "", fmt.Errorf("can't finish blob write: %w", err)
	}

	id, ok := us.FileID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected blob id type %T", us.FileID)
	}

	level.Info(s.log).Log("msg", "blob stored",
		"id", id.Hex(),
		"filename", blob.Filename,
		"size", n,
	)

	return id.Hex(), nil
}

func (s *blobStore) Open(ctx context.Context, id string) (domain.Blob, error) {
	info, err := s.Stat(ctx, id)
	if err != nil {
		return domain.Blob{}, err
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Blob{}, domain.ErrBlobNotFound
	}

	if dl, ok := ctx.Deadline(); ok {
		if err = s.bucket.SetReadDeadline(dl); err != nil {
			return domain.Blob{}, fmt.Errorf("can't set read deadline: %w", err)
		}
	}

	ds, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return domain.Blob{}, domain.ErrBlobNotFound
		}

		return domain.Blob{}, fmt.Errorf("can't open download stream: %w", err)
	}

	return domain.Blob{Info: info, Body: ds}, nil
}

func (s *blobStore) Stat(ctx context.Context, id string) (domain.BlobInfo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.BlobInfo{}, domain.ErrBlobNotFound
	}

	var doc blobDoc
	err = s.files.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.BlobInfo{}, domain.ErrBlobNotFound
		}

		return domain.BlobInfo{}, fmt.Errorf("can't get blob metadata: %w", err)
	}

	contentType := doc.Metadata.Mimetype
	if contentType == "" {
		contentType = defaultContentType
	}

	return domain.BlobInfo{
		ID:          doc.ID.Hex(),
		Filename:    doc.Filename,
		Length:      doc.Length,
		ChunkSize:   doc.ChunkSize,
		UploadDate:  doc.UploadDate,
		ContentType: contentType,
		MimeType:    doc.Metadata.Mimetype,
		ExpireAt:    doc.Metadata.Expiration,
	}, nil
}
