package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/acebook/backend/internal/models"
	"github.com/anonto42/acebook/backend/internal/repositories"
	"github.com/anonto42/acebook/backend/internal/validators"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	tokens         TokenIssuer
	validator      *validators.CustomValidator
	maxLength      int
	log            logrus.FieldLogger
}

// NewPostHandler creates a new PostHandler. maxLength caps trimmed messages.
func NewPostHandler(postRepo repositories.PostRepository, tokens TokenIssuer, v *validators.CustomValidator, maxLength int, log logrus.FieldLogger) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		tokens:         tokens,
		validator:      v,
		maxLength:      maxLength,
		log:            log,
	}
}

// RegisterPostRoutes registers post-related routes on an authenticated group
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("", h.GetPosts)
	g.POST("", h.CreatePost)
	g.GET("/me", h.GetMyPosts)
	g.GET("/:id", h.GetPost)
	g.PUT("/:id", h.UpdatePost)
	g.DELETE("/:id", h.DeletePost)
	g.POST("/:id/like", h.LikePost)
	g.DELETE("/:id/like", h.UnlikePost)
}

// GetPosts lists posts, optionally filtered by ?search= and ordered by
// ?sort_by=createdAt|likes&order=asc|desc.
func (h *PostHandler) GetPosts(c echo.Context) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}

	query, err := parsePostQuery(c)
	if err != nil {
		return err
	}

	posts, err := h.postRepository.GetPosts(c.Request().Context(), query)
	if err != nil {
		return internalError(err)
	}

	token, err := refreshToken(c, h.tokens, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": views(posts, userID), "token": token})
}

func parsePostQuery(c echo.Context) (models.PostQuery, error) {
	query := models.PostQuery{Search: strings.TrimSpace(c.QueryParam("search"))}

	switch sortBy := c.QueryParam("sort_by"); sortBy {
	case "", models.SortByCreatedAt, models.SortByLikes:
		query.SortBy = sortBy
	default:
		return query, echo.NewHTTPError(http.StatusBadRequest, "sort_by must be createdAt or likes")
	}

	switch c.QueryParam("order") {
	case "", "asc":
	case "desc":
		query.Descending = true
	default:
		return query, echo.NewHTTPError(http.StatusBadRequest, "order must be asc or desc")
	}
	return query, nil
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}
	postID, err := objectIDParam(c, "id", "Invalid post ID")
	if err != nil {
		return err
	}

	post, err := h.findPost(c, postID)
	if err != nil {
		return err
	}

	token, err := refreshToken(c, h.tokens, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"post": post.View(userID), "token": token})
}

// CreatePost creates a new post authored by the requester
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	message := strings.TrimSpace(req.Message)
	if err := h.validator.Text("message", message, h.maxLength); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	post := &models.Post{
		Message:  message,
		AuthorID: userID,
		Image:    req.Image,
	}
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return internalError(err)
	}

	// re-read for the populated author
	created, err := h.postRepository.GetPostByID(ctx, post.ID)
	if err != nil {
		return internalError(err)
	}

	token, err := refreshToken(c, h.tokens, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Post created",
		"post":    created.View(userID),
		"token":   token,
	})
}

// UpdatePost replaces the message of the requester's own post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}
	postID, err := objectIDParam(c, "id", "Invalid post ID")
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	message := strings.TrimSpace(req.Message)
	if err := h.validator.Text("message", message, h.maxLength); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	existing, err := h.findPost(c, postID)
	if err != nil {
		return err
	}
	if existing.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own posts")
	}

	post, err := h.postRepository.UpdatePost(c.Request().Context(), postID, message)
	if err != nil {
		return h.mapStoreError(err)
	}

	token, err := refreshToken(c, h.tokens, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"post": post.View(userID), "token": token})
}

// DeletePost deletes the requester's own post
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}
	postID, err := objectIDParam(c, "id", "Invalid post ID")
	if err != nil {
		return err
	}

	existing, err := h.findPost(c, postID)
	if err != nil {
		return err
	}
	if existing.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own posts")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return h.mapStoreError(err)
	}
	h.log.WithFields(logrus.Fields{"post_id": postID.Hex(), "user_id": userID.Hex()}).Info("post deleted")

	token, err := refreshToken(c, h.tokens, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted", "token": token})
}

// LikePost adds the requester to the post's likes; repeating it is a no-op.
func (h *PostHandler) LikePost(c echo.Context) error {
	return h.toggleLike(c, h.postRepository.AddLike)
}

// UnlikePost removes the requester from the post's likes; unliking a post
// that was never liked is a no-op.
func (h *PostHandler) UnlikePost(c echo.Context) error {
	return h.toggleLike(c, h.postRepository.RemoveLike)
}

type likeUpdate func(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)

func (h *PostHandler) toggleLike(c echo.Context, update likeUpdate) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}
	postID, err := objectIDParam(c, "id", "Invalid post ID")
	if err != nil {
		return err
	}

	post, err := update(c.Request().Context(), postID, userID)
	if err != nil {
		return h.mapStoreError(err)
	}

	token, err := refreshToken(c, h.tokens, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"post": post.View(userID), "token": token})
}

// GetMyPosts lists the requester's posts newest first. The body is an
// array, so the token travels only in the header.
func (h *PostHandler) GetMyPosts(c echo.Context) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}

	posts, err := h.postRepository.GetPostsByAuthor(c.Request().Context(), userID)
	if err != nil {
		return internalError(err)
	}

	if _, err := refreshToken(c, h.tokens, userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views(posts, userID))
}

func (h *PostHandler) findPost(c echo.Context, postID primitive.ObjectID) (*models.Post, error) {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return nil, h.mapStoreError(err)
	}
	return post, nil
}

func (h *PostHandler) mapStoreError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	return internalError(err)
}

func views(posts []models.Post, requester primitive.ObjectID) []models.PostView {
	out := make([]models.PostView, len(posts))
	for i := range posts {
		out[i] = posts[i].View(requester)
	}
	return out
}
