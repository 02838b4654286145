package router

import (
	"context"
	"fmt"

	"github.com/anonto42/acebook/backend/internal/repositories"
	"github.com/anonto42/acebook/backend/pkg/config"
)

// NewRepositories builds the stores for whichever connection db holds,
// migrating or indexing the schema on the way.
func NewRepositories(ctx context.Context, db *config.DB) (Repositories, error) {
	if db.Postgres != nil {
		if err := repositories.AutoMigrate(db.Postgres); err != nil {
			return Repositories{}, fmt.Errorf("auto migrate: %w", err)
		}
		return Repositories{
			Users:    repositories.NewPostgresUserRepository(db.Postgres),
			Posts:    repositories.NewPostgresPostRepository(db.Postgres),
			Comments: repositories.NewPostgresCommentRepository(db.Postgres),
			Files:    repositories.NewPostgresFileRepository(db.Postgres),
		}, nil
	}

	users := repositories.NewMongoUserRepository(db.Database)
	if err := users.EnsureIndexes(ctx); err != nil {
		return Repositories{}, fmt.Errorf("ensure user indexes: %w", err)
	}
	files, err := repositories.NewGridFSFileRepository(db.Database)
	if err != nil {
		return Repositories{}, err
	}
	return Repositories{
		Users:    users,
		Posts:    repositories.NewMongoPostRepository(db.Database),
		Comments: repositories.NewMongoCommentRepository(db.Database),
		Files:    files,
	}, nil
}
