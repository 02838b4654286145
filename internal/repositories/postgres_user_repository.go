package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/acebook/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	rec := toUserRecord(user)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.first(ctx, "id = ?", id.Hex())
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *PostgresUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	var recs []userRecord
	if err := r.db.WithContext(ctx).Order("created_at asc").Order("id asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	users := make([]models.User, len(recs))
	for i := range recs {
		users[i] = recs[i].toModel()
	}
	return users, nil
}

func (r *PostgresUserRepository) UpdateBackgroundImage(ctx context.Context, id primitive.ObjectID, ref string) (*models.User, error) {
	res := r.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", id.Hex()).Update("background_image", ref)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetUserByID(ctx, id)
}

// getUsersByIDs loads summaries for populating authors.
func (r *PostgresUserRepository) getUsersByIDs(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	users := map[string]models.UserSummary{}
	if len(ids) == 0 {
		return users, nil
	}
	var recs []userRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&recs).Error; err != nil {
		return nil, err
	}
	for i := range recs {
		u := recs[i].toModel()
		users[recs[i].ID] = u.ToSummary()
	}
	return users, nil
}

func (r *PostgresUserRepository) first(ctx context.Context, query string, arg any) (*models.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).Where(query, arg).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user := rec.toModel()
	return &user, nil
}

func toUserRecord(u *models.User) userRecord {
	return userRecord{
		ID:                 u.ID.Hex(),
		Email:              u.Email,
		Password:           u.Password,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Bio:                u.Bio,
		Job:                u.Job,
		Location:           u.Location,
		Gender:             u.Gender,
		RelationshipStatus: u.RelationshipStatus,
		Birthdate:          u.Birthdate,
		ProfileImage:       u.ProfileImage,
		BackgroundImage:    u.BackgroundImage,
		CreatedAt:          time.Now().UTC(),
	}
}

func (rec *userRecord) toModel() models.User {
	return models.User{
		ID:                 oid(rec.ID),
		Email:              rec.Email,
		Password:           rec.Password,
		FirstName:          rec.FirstName,
		LastName:           rec.LastName,
		Bio:                rec.Bio,
		Job:                rec.Job,
		Location:           rec.Location,
		Gender:             rec.Gender,
		RelationshipStatus: rec.RelationshipStatus,
		Birthdate:          rec.Birthdate,
		ProfileImage:       rec.ProfileImage,
		BackgroundImage:    rec.BackgroundImage,
	}
}

// isUniqueViolation matches the unique-constraint errors of postgres (23505)
// and sqlite without importing either driver's error type.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "23505")
}
