package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anonto42/acebook/backend/internal/models"
	"github.com/anonto42/acebook/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository      repositories.UserRepository
	fileRepository      repositories.FileRepository
	tokens              TokenIssuer
	defaultProfileImage string
	log                 logrus.FieldLogger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, fileRepo repositories.FileRepository, tokens TokenIssuer, defaultProfileImage string, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{
		userRepository:      userRepo,
		fileRepository:      fileRepo,
		tokens:              tokens,
		defaultProfileImage: defaultProfileImage,
		log:                 log,
	}
}

// RegisterUserRoutes registers user routes. Signup is public, the listing
// accepts an optional token and the rest require one.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, auth, optionalAuth, signupLimit echo.MiddlewareFunc) {
	g.POST("", h.Signup, signupLimit)
	g.GET("", h.GetUsers, optionalAuth)
	g.GET("/profile", h.GetProfile, auth)
	g.POST("/:id/background", h.UploadBackground, auth)
}

// Signup creates an account from JSON or multipart form data. A multipart
// request may carry a profileImage file.
func (h *UserHandler) Signup(c echo.Context) error {
	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req.Email = normalizeEmail(req.Email)
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Password) > models.MaxPasswordBytes {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("password must be at most %d bytes", models.MaxPasswordBytes))
	}

	ctx := c.Request().Context()

	// Check before inserting so the common case gets a clean message; the
	// unique index still catches races.
	if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Email already in use")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return internalError(err)
	}

	upload, err := h.uploadProfileImage(c)
	if err != nil {
		return err
	}
	profileImage := h.defaultProfileImage
	if upload != nil {
		profileImage = upload.URL()
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.discardFile(ctx, upload)
		return internalError(err)
	}

	user := &models.User{
		Email:              req.Email,
		Password:           string(hashedPassword),
		FirstName:          models.OptionalString(req.FirstName),
		LastName:           models.OptionalString(req.LastName),
		Bio:                models.OptionalString(req.Bio),
		Job:                models.OptionalString(req.Job),
		Location:           models.OptionalString(req.Location),
		Gender:             models.OptionalString(req.Gender),
		RelationshipStatus: models.OptionalString(req.RelationshipStatus),
		Birthdate:          models.OptionalString(req.Birthdate),
		ProfileImage:       &profileImage,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		h.discardFile(ctx, upload)
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return echo.NewHTTPError(http.StatusBadRequest, "Email already in use")
		}
		return internalError(err)
	}
	h.log.WithField("user_id", user.ID.Hex()).Info("user created")

	token, err := h.tokens.IssueLogin(user.ID)
	if err != nil {
		return internalError(err)
	}
	c.Response().Header().Set(TokenHeader, token)
	return c.JSON(http.StatusCreated, echo.Map{"message": "OK", "token": token})
}

// uploadProfileImage stores the optional signup upload. It returns nil when
// nothing was sent.
func (h *UserHandler) uploadProfileImage(c echo.Context) (*models.StoredFile, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}
	fh, err := c.FormFile("profileImage")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid profileImage upload")
	}
	data, contentType, err := readImage(fh)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "profileImage must be a png, jpeg, gif or webp image")
	}
	stored, err := h.fileRepository.SaveFile(c.Request().Context(), models.StoredFile{
		Filename:    fh.Filename,
		ContentType: contentType,
	}, bytes.NewReader(data))
	if err != nil {
		return nil, internalError(err)
	}
	return stored, nil
}

// discardFile removes an upload whose user write failed. A nil file is a no-op.
func (h *UserHandler) discardFile(ctx context.Context, file *models.StoredFile) {
	if file == nil {
		return
	}
	if err := h.fileRepository.DeleteFile(ctx, file.ID); err != nil {
		h.log.WithError(err).WithField("file_id", file.ID.Hex()).Warn("orphaned upload")
	}
}

// GetProfile returns the requester's own profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return internalError(err)
	}

	token, err := refreshToken(c, h.tokens, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Profile: user.ToProfile(), Token: token})
}

// profileResponse is the profile fields with the refreshed token beside them.
type profileResponse struct {
	models.Profile
	Token string `json:"token"`
}

// GetUsers lists every user. Anonymous callers get no token back.
func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := h.userRepository.GetUsers(c.Request().Context())
	if err != nil {
		return internalError(err)
	}
	summaries := make([]models.UserSummary, len(users))
	for i := range users {
		summaries[i] = users[i].ToSummary()
	}

	resp := echo.Map{"users": summaries}
	if userID, err := requesterID(c); err == nil {
		token, err := refreshToken(c, h.tokens, userID)
		if err != nil {
			return err
		}
		resp["token"] = token
	}
	return c.JSON(http.StatusOK, resp)
}

// UploadBackground replaces the background image of the requester.
func (h *UserHandler) UploadBackground(c echo.Context) error {
	requester, err := requesterID(c)
	if err != nil {
		return err
	}
	userID, err := objectIDParam(c, "id", "Invalid user ID")
	if err != nil {
		return err
	}
	if userID != requester {
		return echo.NewHTTPError(http.StatusForbidden, "You can only change your own background image")
	}

	ctx := c.Request().Context()
	if _, err := h.userRepository.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return internalError(err)
	}

	fh, err := c.FormFile("backgroundImage")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "backgroundImage file is required")
	}
	data, contentType, err := readImage(fh)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "backgroundImage must be a png, jpeg, gif or webp image")
	}

	stored, err := h.fileRepository.SaveFile(ctx, models.StoredFile{
		Filename:    fh.Filename,
		ContentType: contentType,
	}, bytes.NewReader(data))
	if err != nil {
		return internalError(err)
	}

	user, err := h.userRepository.UpdateBackgroundImage(ctx, userID, stored.URL())
	if err != nil {
		h.discardFile(ctx, stored)
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return internalError(err)
	}
	h.log.WithFields(logrus.Fields{"user_id": userID.Hex(), "file_id": stored.ID.Hex()}).Info("background image updated")

	token, err := refreshToken(c, h.tokens, requester)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user.ToProfile(), "token": token})
}
