package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/acebook/backend/internal/models"
	"github.com/anonto42/acebook/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	tokens            TokenIssuer
	log               logrus.FieldLogger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, tokens TokenIssuer, log logrus.FieldLogger) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		tokens:            tokens,
		log:               log,
	}
}

// RegisterCommentRoutes registers comment-related routes on an authenticated group
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("", h.CreateComment)
	g.GET("", h.GetComments)
	g.GET("/post/:postId", h.GetCommentsByPost)
	g.PUT("/:id", h.UpdateComment)
	g.DELETE("/:id", h.DeleteComment)
}

// CreateComment adds a comment to an existing post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if req.Content == "" || req.Post == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Content and post are required")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	postID, err := primitive.ObjectIDFromHex(req.Post)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	ctx := c.Request().Context()
	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return internalError(err)
	}

	comment := &models.Comment{
		Content:  req.Content,
		AuthorID: userID,
		PostID:   postID,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return internalError(err)
	}

	created, err := h.commentRepository.GetCommentByID(ctx, comment.ID)
	if err != nil {
		return internalError(err)
	}

	token, err := refreshToken(c, h.tokens, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"comment": created, "token": token})
}

// GetComments lists all comments newest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}

	comments, err := h.commentRepository.GetComments(c.Request().Context())
	if err != nil {
		return internalError(err)
	}

	token, err := refreshToken(c, h.tokens, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments, "token": token})
}

// GetCommentsByPost lists a post's comments oldest first, unlike GetComments.
func (h *CommentHandler) GetCommentsByPost(c echo.Context) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}
	postID, err := objectIDParam(c, "postId", "Invalid post ID")
	if err != nil {
		return err
	}

	comments, err := h.commentRepository.GetCommentsByPostID(c.Request().Context(), postID)
	if err != nil {
		return internalError(err)
	}

	token, err := refreshToken(c, h.tokens, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments, "token": token})
}

// UpdateComment updates the content of the requester's own comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}
	commentID, err := objectIDParam(c, "id", "Invalid comment ID")
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	existing, err := h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		return mapCommentError(err)
	}
	if existing.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own comments")
	}

	comment, err := h.commentRepository.UpdateComment(ctx, commentID, req.Content)
	if err != nil {
		return mapCommentError(err)
	}

	token, err := refreshToken(c, h.tokens, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"comment": comment, "token": token})
}

// DeleteComment deletes the requester's own comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, err := requesterID(c)
	if err != nil {
		return err
	}
	commentID, err := objectIDParam(c, "id", "Invalid comment ID")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	existing, err := h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		return mapCommentError(err)
	}
	if existing.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own comments")
	}

	if err := h.commentRepository.DeleteComment(ctx, commentID); err != nil {
		return mapCommentError(err)
	}
	h.log.WithFields(logrus.Fields{"comment_id": commentID.Hex(), "user_id": userID.Hex()}).Info("comment deleted")

	token, err := refreshToken(c, h.tokens, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment deleted successfully.", "token": token})
}

func mapCommentError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	return internalError(err)
}
