package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/acebook/backend/internal/middleware"
	"github.com/anonto42/acebook/backend/internal/models"
	"github.com/anonto42/acebook/backend/internal/repositories"
	"github.com/anonto42/acebook/backend/pkg/firebase"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// IdentityVerifier checks third-party ID tokens.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebase.Identity, error)
}

// AuthHandler handles token issuance.
type AuthHandler struct {
	userRepository repositories.UserRepository
	tokens         TokenIssuer
	firebaseAuth   IdentityVerifier
	log            logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, in which
// case the Firebase login route is not registered.
func NewAuthHandler(userRepo repositories.UserRepository, tokens TokenIssuer, firebaseAuth IdentityVerifier, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		tokens:         tokens,
		firebaseAuth:   firebaseAuth,
		log:            log,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("", h.Login, m...)
	if h.firebaseAuth != nil {
		g.POST("/firebase", h.FirebaseLogin, m...)
	}
}

// Login exchanges email and password for a session token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req.Email = normalizeEmail(req.Email)
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return middleware.ErrAuth
		}
		return internalError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return middleware.ErrAuth
	}

	return h.respondWithLoginToken(c, user)
}

// FirebaseLogin verifies a Firebase ID token and issues a local session token,
// creating the account on first sign-in.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	identity, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return middleware.ErrAuth
	}

	email := normalizeEmail(identity.Email)
	user, err := h.userRepository.GetUserByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		user, err = h.createFirebaseUser(ctx, email, identity)
	}
	if err != nil {
		return internalError(err)
	}

	return h.respondWithLoginToken(c, user)
}

func (h *AuthHandler) createFirebaseUser(ctx context.Context, email string, identity *firebase.Identity) (*models.User, error) {
	// Firebase accounts never log in with a password; store an unguessable one.
	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:     email,
		Password:  string(hashed),
		FirstName: models.OptionalString(identity.Name),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return h.userRepository.GetUserByEmail(ctx, email)
		}
		return nil, err
	}
	h.log.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "firebase_uid": identity.UID}).Info("user created from firebase login")
	return user, nil
}

func (h *AuthHandler) respondWithLoginToken(c echo.Context, user *models.User) error {
	token, err := h.tokens.IssueLogin(user.ID)
	if err != nil {
		return internalError(err)
	}
	c.Response().Header().Set(TokenHeader, token)
	return c.JSON(http.StatusCreated, echo.Map{"message": "OK", "token": token})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
