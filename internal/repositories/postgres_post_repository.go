package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/acebook/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const likesCountExpr = "(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id)"

// PostgresPostRepository implements PostRepository with gorm.
type PostgresPostRepository struct {
	db    *gorm.DB
	likes *PostgresLikeRepository
	users *PostgresUserRepository
}

func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{
		db:    db,
		likes: NewPostgresLikeRepository(db),
		users: NewPostgresUserRepository(db),
	}
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now().UTC()
	post.UpdatedAt = post.CreatedAt
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	rec := postRecord{
		ID:        post.ID.Hex(),
		Message:   post.Message,
		AuthorID:  post.AuthorID.Hex(),
		Image:     post.Image,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var rec postRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id.Hex()).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	posts, err := r.populate(ctx, []postRecord{rec})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (r *PostgresPostRepository) GetPosts(ctx context.Context, query models.PostQuery) ([]models.Post, error) {
	tx := r.db.WithContext(ctx).Model(&postRecord{})
	if query.Search != "" {
		tx = tx.Where(`LOWER(message) LIKE ? ESCAPE '\'`, containsPattern(query.Search))
	}

	dir := "asc"
	if query.Descending {
		dir = "desc"
	}
	switch query.SortBy {
	case models.SortByCreatedAt:
		tx = tx.Order("created_at " + dir).Order("id " + dir)
	case models.SortByLikes:
		tx = tx.Order(likesCountExpr + " " + dir).Order("id " + dir)
	default:
		tx = tx.Order("created_at asc").Order("id asc")
	}

	var recs []postRecord
	if err := tx.Find(&recs).Error; err != nil {
		return nil, err
	}
	return r.populate(ctx, recs)
}

func (r *PostgresPostRepository) GetPostsByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Post, error) {
	var recs []postRecord
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID.Hex()).
		Order("created_at desc").Order("id desc").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return r.populate(ctx, recs)
}

func (r *PostgresPostRepository) UpdatePost(ctx context.Context, id primitive.ObjectID, message string) (*models.Post, error) {
	res := r.db.WithContext(ctx).Model(&postRecord{}).Where("id = ?", id.Hex()).
		Updates(map[string]any{"message": message, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetPostByID(ctx, id)
}

// DeletePost removes the post and its likes in one transaction.
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id.Hex()).Delete(&postRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return NewPostgresLikeRepository(tx).DeleteLikesByPostID(ctx, id)
	})
}

// AddLike locks the post row while inserting so a concurrent DeletePost
// cannot leave a like behind.
func (r *PostgresPostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, postID); err != nil {
			return err
		}
		return NewPostgresLikeRepository(tx).CreateLike(ctx, postID, userID)
	})
	if err != nil {
		return nil, err
	}
	return r.GetPostByID(ctx, postID)
}

func (r *PostgresPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, postID); err != nil {
			return err
		}
		return NewPostgresLikeRepository(tx).DeleteLike(ctx, postID, userID)
	})
	if err != nil {
		return nil, err
	}
	return r.GetPostByID(ctx, postID)
}

// lockPost takes a row lock on the post, or returns ErrNotFound.
func lockPost(tx *gorm.DB, id primitive.ObjectID) error {
	q := tx.Model(&postRecord{}).Select("id").Where("id = ?", id.Hex())
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rec postRecord
	if err := q.Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// populate attaches likes and author summaries, keeping record order.
func (r *PostgresPostRepository) populate(ctx context.Context, recs []postRecord) ([]models.Post, error) {
	postIDs := make([]string, len(recs))
	authorIDs := make([]string, 0, len(recs))
	seen := map[string]bool{}
	for i, rec := range recs {
		postIDs[i] = rec.ID
		if !seen[rec.AuthorID] {
			seen[rec.AuthorID] = true
			authorIDs = append(authorIDs, rec.AuthorID)
		}
	}

	likes, err := r.likes.GetLikesByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	authors, err := r.users.getUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	posts := make([]models.Post, len(recs))
	for i, rec := range recs {
		posts[i] = models.Post{
			ID:        oid(rec.ID),
			Message:   rec.Message,
			AuthorID:  oid(rec.AuthorID),
			Image:     rec.Image,
			Likes:     likes[rec.ID],
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		}
		if posts[i].Likes == nil {
			posts[i].Likes = []primitive.ObjectID{}
		}
		if author, ok := authors[rec.AuthorID]; ok {
			posts[i].Author = &author
		}
	}
	return posts, nil
}
