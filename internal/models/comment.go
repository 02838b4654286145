package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxCommentLength caps comment content, counted in runes.
const MaxCommentLength = 500

// Comment represents a comment on a post
type Comment struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Content   string             `json:"content" bson:"content"`
	AuthorID  primitive.ObjectID `json:"-" bson:"author"`
	PostID    primitive.ObjectID `json:"-" bson:"post"`
	Author    *UserSummary       `json:"author" bson:"-"`
	Post      *PostSummary       `json:"post" bson:"-"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=500"`
	Post    string `json:"post" validate:"required"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}
