package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/anonto42/acebook/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FileRepository stores uploaded images.
type FileRepository interface {
	SaveFile(ctx context.Context, meta models.StoredFile, src io.Reader) (*models.StoredFile, error)
	OpenFile(ctx context.Context, id primitive.ObjectID) (*models.StoredFile, io.ReadCloser, error)
	DeleteFile(ctx context.Context, id primitive.ObjectID) error
}

// GridFSFileRepository keeps files in a GridFS bucket.
type GridFSFileRepository struct {
	db *mongo.Database
}

func NewGridFSFileRepository(db *mongo.Database) (*GridFSFileRepository, error) {
	if _, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(filesBucket)); err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &GridFSFileRepository{db: db}, nil
}

// bucket opens a bucket bound to ctx's deadline. GridFS streams take no
// context, and deadlines are per bucket, so each call gets its own.
func (r *GridFSFileRepository) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := gridfs.NewBucket(r.db, options.GridFSBucket().SetName(filesBucket))
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		if err := b.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (r *GridFSFileRepository) SaveFile(ctx context.Context, meta models.StoredFile, src io.Reader) (*models.StoredFile, error) {
	b, err := r.bucket(ctx)
	if err != nil {
		return nil, err
	}
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": meta.ContentType})
	id, err := b.UploadFromStream(meta.Filename, src, opts)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", meta.Filename, err)
	}
	meta.ID = id
	return &meta, nil
}

func (r *GridFSFileRepository) OpenFile(ctx context.Context, id primitive.ObjectID) (*models.StoredFile, io.ReadCloser, error) {
	b, err := r.bucket(ctx)
	if err != nil {
		return nil, nil, err
	}
	stream, err := b.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	file := stream.GetFile()
	meta := &models.StoredFile{
		ID:       id,
		Filename: file.Name,
		Size:     file.Length,
	}
	if file.Metadata != nil {
		if ct, ok := file.Metadata.Lookup("contentType").StringValueOK(); ok {
			meta.ContentType = ct
		}
	}
	return meta, stream, nil
}

// DeleteFile removes the file and its chunks.
func (r *GridFSFileRepository) DeleteFile(ctx context.Context, id primitive.ObjectID) error {
	b, err := r.bucket(ctx)
	if err != nil {
		return err
	}
	if err := b.Delete(id); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
