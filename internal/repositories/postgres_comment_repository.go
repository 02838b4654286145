package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/acebook/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db    *gorm.DB
	users *PostgresUserRepository
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db, users: NewPostgresUserRepository(db)}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()
	comment.UpdatedAt = comment.CreatedAt
	rec := commentRecord{
		ID:        comment.ID.Hex(),
		Content:   comment.Content,
		AuthorID:  comment.AuthorID.Hex(),
		PostID:    comment.PostID.Hex(),
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// GetCommentByID retrieves a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var rec commentRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id.Hex()).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	comments, err := r.populate(ctx, []commentRecord{rec}, true)
	if err != nil {
		return nil, err
	}
	return &comments[0], nil
}

func (r *PostgresCommentRepository) GetComments(ctx context.Context) ([]models.Comment, error) {
	var recs []commentRecord
	if err := r.db.WithContext(ctx).Order("created_at desc").Order("id desc").Find(&recs).Error; err != nil {
		return nil, err
	}
	return r.populate(ctx, recs, true)
}

// GetCommentsByPostID retrieves all comments for a specific post from PostgreSQL
func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	var recs []commentRecord
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID.Hex()).
		Order("created_at asc").Order("id asc").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return r.populate(ctx, recs, false)
}

// UpdateComment updates an existing comment in PostgreSQL
func (r *PostgresCommentRepository) UpdateComment(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	res := r.db.WithContext(ctx).Model(&commentRecord{}).Where("id = ?", id.Hex()).
		Updates(map[string]any{"content": content, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetCommentByID(ctx, id)
}

// DeleteComment deletes a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id.Hex()).Delete(&commentRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresCommentRepository) populate(ctx context.Context, recs []commentRecord, withPost bool) ([]models.Comment, error) {
	authorIDs := make([]string, 0, len(recs))
	postIDs := make([]string, 0, len(recs))
	for _, rec := range recs {
		authorIDs = append(authorIDs, rec.AuthorID)
		postIDs = append(postIDs, rec.PostID)
	}

	authors, err := r.users.getUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	posts := map[string]models.PostSummary{}
	if withPost && len(postIDs) > 0 {
		var postRecs []postRecord
		if err := r.db.WithContext(ctx).Select("id", "message").Where("id IN ?", postIDs).Find(&postRecs).Error; err != nil {
			return nil, err
		}
		for _, p := range postRecs {
			posts[p.ID] = models.PostSummary{ID: oid(p.ID), Message: p.Message}
		}
	}

	comments := make([]models.Comment, len(recs))
	for i, rec := range recs {
		comments[i] = models.Comment{
			ID:        oid(rec.ID),
			Content:   rec.Content,
			AuthorID:  oid(rec.AuthorID),
			PostID:    oid(rec.PostID),
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		}
		if author, ok := authors[rec.AuthorID]; ok {
			// comments expose only the author's email
			comments[i].Author = &models.UserSummary{ID: author.ID, Email: author.Email}
		}
		if post, ok := posts[rec.PostID]; ok {
			comments[i].Post = &post
		}
	}
	return comments, nil
}
