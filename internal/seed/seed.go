// Package seed fills a store with fake users, posts, likes and comments for
// local development.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/anonto42/acebook/backend/internal/models"
	"github.com/anonto42/acebook/backend/internal/router"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	Seed            int64
}

// Result lists what was created.
type Result struct {
	Users    []models.User
	Posts    []models.Post
	Comments int
	Likes    int
}

type Seeder struct {
	repos router.Repositories
	log   logrus.FieldLogger
}

func New(repos router.Repositories, log logrus.FieldLogger) *Seeder {
	return &Seeder{repos: repos, log: log}
}

func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	faker := gofakeit.New(opts.Seed)
	rng := rand.New(rand.NewSource(opts.Seed))

	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for i := 0; i < opts.Users; i++ {
		user := &models.User{
			Email:     fmt.Sprintf("%d.%s", i, strings.ToLower(faker.Email())),
			Password:  string(hashed),
			FirstName: models.OptionalString(faker.FirstName()),
			LastName:  models.OptionalString(faker.LastName()),
			Bio:       models.OptionalString(faker.Sentence(10)),
			Job:       models.OptionalString(faker.JobTitle()),
			Location:  models.OptionalString(faker.City()),
			Gender:    models.OptionalString(faker.Gender()),
			Birthdate: models.OptionalString(faker.Date().Format("2006-01-02")),
		}
		if err := s.repos.Users.CreateUser(ctx, user); err != nil {
			return res, fmt.Errorf("seed user %d: %w", i, err)
		}
		res.Users = append(res.Users, *user)
	}

	for _, author := range res.Users {
		for j := 0; j < opts.PostsPerUser; j++ {
			post := &models.Post{
				Message:  truncate(faker.Sentence(12), 200),
				AuthorID: author.ID,
			}
			if err := s.repos.Posts.CreatePost(ctx, post); err != nil {
				return res, fmt.Errorf("seed post: %w", err)
			}
			res.Posts = append(res.Posts, *post)
		}
	}

	for _, post := range res.Posts {
		for _, liker := range res.Users {
			if rng.Intn(2) == 0 {
				continue
			}
			if _, err := s.repos.Posts.AddLike(ctx, post.ID, liker.ID); err != nil {
				return res, fmt.Errorf("seed like: %w", err)
			}
			res.Likes++
		}
		for k := 0; k < opts.CommentsPerPost && len(res.Users) > 0; k++ {
			comment := &models.Comment{
				Content:  truncate(faker.Sentence(8), models.MaxCommentLength),
				AuthorID: res.Users[rng.Intn(len(res.Users))].ID,
				PostID:   post.ID,
			}
			if err := s.repos.Comments.CreateComment(ctx, comment); err != nil {
				return res, fmt.Errorf("seed comment: %w", err)
			}
			res.Comments++
		}
	}

	s.log.WithFields(logrus.Fields{
		"users":    len(res.Users),
		"posts":    len(res.Posts),
		"likes":    res.Likes,
		"comments": res.Comments,
	}).Info("seed complete")
	return res, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
