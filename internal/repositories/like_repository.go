package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresLikeRepository stores post likes as (post_id, user_id) rows.
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike inserts the like unless it already exists
func (r *PostgresLikeRepository) CreateLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	like := likeRecord{PostID: postID.Hex(), UserID: userID.Hex(), CreatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error
}

// DeleteLike removes the like; deleting a missing like is not an error
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID.Hex(), userID.Hex()).
		Delete(&likeRecord{}).Error
}

// GetLikesByPostIDs returns the likers of each post in like order.
func (r *PostgresLikeRepository) GetLikesByPostIDs(ctx context.Context, postIDs []string) (map[string][]primitive.ObjectID, error) {
	likes := map[string][]primitive.ObjectID{}
	if len(postIDs) == 0 {
		return likes, nil
	}

	var rows []likeRecord
	err := r.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("created_at asc").Order("user_id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		likes[row.PostID] = append(likes[row.PostID], oid(row.UserID))
	}
	return likes, nil
}

// DeleteLikesByPostID drops every like of a post.
func (r *PostgresLikeRepository) DeleteLikesByPostID(ctx context.Context, postID primitive.ObjectID) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID.Hex()).Delete(&likeRecord{}).Error
}
