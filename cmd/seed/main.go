package main

import (
	"context"
	"flag"

	"github.com/anonto42/acebook/backend/internal/router"
	"github.com/anonto42/acebook/backend/internal/seed"
	"github.com/anonto42/acebook/backend/pkg/config"
	"github.com/anonto42/acebook/backend/pkg/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	users := flag.Int("users", 10, "number of users")
	posts := flag.Int("posts", 3, "posts per user")
	comments := flag.Int("comments", 2, "comments per post")
	randSeed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	ctx := context.Background()
	db, err := config.InitDB(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.CloseDB()

	repos, err := router.NewRepositories(ctx, db)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize repositories")
	}

	_, err = seed.New(repos, log).Run(ctx, seed.Options{
		Users:           *users,
		PostsPerUser:    *posts,
		CommentsPerPost: *comments,
		Seed:            *randSeed,
	})
	if err != nil {
		log.WithError(err).Fatal("Seeding failed")
	}
	log.WithField("password", seed.DefaultPassword).Info("Seeded accounts share one password")
}
