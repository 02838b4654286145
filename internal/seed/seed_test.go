package seed_test

import (
	"context"
	"testing"

	"github.com/anonto42/acebook/backend/internal/models"
	"github.com/anonto42/acebook/backend/internal/seed"
	"github.com/anonto42/acebook/backend/internal/testutil"
	"github.com/anonto42/acebook/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	srv := testutil.NewServer(t)

	res, err := seed.New(srv.Repos, logger.Discard()).Run(ctx, seed.Options{
		Users:           3,
		PostsPerUser:    2,
		CommentsPerPost: 1,
		Seed:            42,
	})
	require.NoError(t, err)
	assert.Len(t, res.Users, 3)
	assert.Len(t, res.Posts, 6)
	assert.Equal(t, 6, res.Comments)

	users, err := srv.Repos.Users.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	stored, err := srv.Repos.Users.GetUserByEmail(ctx, res.Users[0].Email)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(seed.DefaultPassword)))

	posts, err := srv.Repos.Posts.GetPosts(ctx, models.PostQuery{})
	require.NoError(t, err)
	require.Len(t, posts, 6)
	likes := 0
	for _, p := range posts {
		assert.LessOrEqual(t, len([]rune(p.Message)), 200)
		likes += p.LikesCount()
	}
	assert.Equal(t, res.Likes, likes)

	comments, err := srv.Repos.Comments.GetComments(ctx)
	require.NoError(t, err)
	assert.Len(t, comments, 6)
}

func TestSeeder_Deterministic(t *testing.T) {
	ctx := context.Background()
	opts := seed.Options{Users: 2, PostsPerUser: 1, Seed: 7}

	first, err := seed.New(testutil.NewServer(t).Repos, logger.Discard()).Run(ctx, opts)
	require.NoError(t, err)
	second, err := seed.New(testutil.NewServer(t).Repos, logger.Discard()).Run(ctx, opts)
	require.NoError(t, err)

	for i := range first.Users {
		assert.Equal(t, first.Users[i].Email, second.Users[i].Email)
	}
	assert.Equal(t, first.Posts[0].Message, second.Posts[0].Message)
	assert.Equal(t, first.Likes, second.Likes)
}
