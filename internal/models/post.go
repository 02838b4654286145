package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a short message with an optional image and a set of likes.
type Post struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Message   string               `json:"message" bson:"message"`
	AuthorID  primitive.ObjectID   `json:"-" bson:"author"`
	Author    *UserSummary         `json:"author" bson:"-"`
	Image     string               `json:"image,omitempty" bson:"image,omitempty"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// PostSummary is the post projection embedded in comment listings.
type PostSummary struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Message string             `json:"message" bson:"message"`
}

// PostView is a post as seen by one requester.
type PostView struct {
	*Post
	LikesCount         int  `json:"likesCount"`
	LikedByCurrentUser bool `json:"likedByCurrentUser"`
}

// LikesCount is the size of the likes set.
func (p *Post) LikesCount() int {
	return len(p.Likes)
}

// LikedBy reports whether userID is in the likes set.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// View computes the derived fields against the requester.
func (p *Post) View(requester primitive.ObjectID) PostView {
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	return PostView{
		Post:               p,
		LikesCount:         p.LikesCount(),
		LikedByCurrentUser: p.LikedBy(requester),
	}
}

// CreatePostRequest is the body of POST /posts and PUT /posts/:id.
// Length is checked after trimming against the configured cap.
type CreatePostRequest struct {
	Message string `json:"message"`
	Image   string `json:"image,omitempty"`
}

// Sort keys accepted by GET /posts
const (
	SortByCreatedAt = "createdAt"
	SortByLikes     = "likes"
)

// PostQuery filters and orders a post listing. Empty SortBy keeps store order.
type PostQuery struct {
	Search     string
	SortBy     string
	Descending bool
}
