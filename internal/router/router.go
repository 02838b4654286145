package router

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anonto42/acebook/backend/internal/handlers"
	"github.com/anonto42/acebook/backend/internal/middleware"
	"github.com/anonto42/acebook/backend/internal/repositories"
	"github.com/anonto42/acebook/backend/internal/session"
	"github.com/anonto42/acebook/backend/internal/validators"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Repositories bundles the stores of the configured driver.
type Repositories struct {
	Users    repositories.UserRepository
	Posts    repositories.PostRepository
	Comments repositories.CommentRepository
	Files    repositories.FileRepository
}

// Deps is everything the route table needs.
type Deps struct {
	Repos               Repositories
	Codec               *session.Codec
	Validator           *validators.CustomValidator
	Store               handlers.Pinger
	Firebase            handlers.IdentityVerifier // nil disables POST /tokens/firebase
	Redis               *redis.Client             // nil disables rate limiting
	AuthRateLimit       int
	PostMaxLength       int
	DefaultProfileImage string
	Log                 *logrus.Logger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	e.Validator = d.Validator
	e.HTTPErrorHandler = ErrorHandler(d.Log)
	if e.IPExtractor == nil {
		// rate limits key on the peer address, never on client headers
		e.IPExtractor = echo.ExtractIPDirect()
	}
	e.Use(middleware.Metrics())

	auth := middleware.JWTAuthMiddleware(d.Codec)
	optionalAuth := middleware.OptionalAuth(d.Codec)

	// Health check - always accessible
	e.GET("/health", handlers.NewHealthHandler(d.Store).HealthCheck)

	// --- Public routes ---
	authHandler := handlers.NewAuthHandler(d.Repos.Users, d.Codec, d.Firebase, d.Log)
	authHandler.RegisterAuthRoutes(e.Group("/tokens"),
		middleware.RateLimit(d.Redis, d.Log, "tokens", d.AuthRateLimit, time.Minute))

	fileHandler := handlers.NewFileHandler(d.Repos.Files)
	fileHandler.RegisterFileRoutes(e.Group("/files"))

	// --- Mixed: signup is public, the rest checks tokens per route ---
	userHandler := handlers.NewUserHandler(d.Repos.Users, d.Repos.Files, d.Codec, d.DefaultProfileImage, d.Log)
	userHandler.RegisterUserRoutes(e.Group("/users"), auth, optionalAuth,
		middleware.RateLimit(d.Redis, d.Log, "signup", d.AuthRateLimit, time.Minute))

	// --- Protected routes (require JWT authentication) ---
	postHandler := handlers.NewPostHandler(d.Repos.Posts, d.Codec, d.Validator, d.PostMaxLength, d.Log)
	postHandler.RegisterPostRoutes(e.Group("/posts", auth))

	commentHandler := handlers.NewCommentHandler(d.Repos.Comments, d.Repos.Posts, d.Codec, d.Log)
	commentHandler.RegisterCommentRoutes(e.Group("/comments", auth))

	d.Log.WithField("routes", len(e.Routes())).Info("All routes configured")
}

// ErrorHandler renders every error as {"message": ...}. Server errors are
// logged with their cause and answered with a generic message.
func ErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if code < http.StatusInternalServerError {
				message = fmt.Sprint(he.Message)
			}
		}

		if code >= http.StatusInternalServerError {
			cause := err
			if he != nil && he.Internal != nil {
				cause = he.Internal
			}
			log.WithFields(logrus.Fields{
				"method": c.Request().Method,
				"path":   c.Path(),
			}).WithError(cause).Error("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]string{"message": message})
		}
		if err != nil {
			log.WithError(err).Error("failed to write error response")
		}
	}
}
