package repositories

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/anonto42/acebook/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// PostgresFileRepository keeps uploads as bytea rows.
type PostgresFileRepository struct {
	db *gorm.DB
}

func NewPostgresFileRepository(db *gorm.DB) *PostgresFileRepository {
	return &PostgresFileRepository{db: db}
}

func (r *PostgresFileRepository) SaveFile(ctx context.Context, meta models.StoredFile, src io.Reader) (*models.StoredFile, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", meta.Filename, err)
	}
	meta.ID = primitive.NewObjectID()
	meta.Size = int64(len(data))

	rec := fileRecord{
		ID:          meta.ID.Hex(),
		Filename:    meta.Filename,
		ContentType: meta.ContentType,
		Size:        meta.Size,
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("insert file: %w", err)
	}
	return &meta, nil
}

func (r *PostgresFileRepository) OpenFile(ctx context.Context, id primitive.ObjectID) (*models.StoredFile, io.ReadCloser, error) {
	var rec fileRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id.Hex()).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	meta := &models.StoredFile{
		ID:          id,
		Filename:    rec.Filename,
		ContentType: rec.ContentType,
		Size:        rec.Size,
	}
	return meta, io.NopCloser(bytes.NewReader(rec.Data)), nil
}

func (r *PostgresFileRepository) DeleteFile(ctx context.Context, id primitive.ObjectID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id.Hex()).Delete(&fileRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
