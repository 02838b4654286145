package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/anonto42/acebook/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PostRepository defines the interface for post data operations.
// Posts returned by reads have their author populated.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetPosts(ctx context.Context, query models.PostQuery) ([]models.Post, error)
	GetPostsByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Post, error)
	UpdatePost(ctx context.Context, id primitive.ObjectID, message string) (*models.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection(postsCollection)}
}

// postDocument is a post decoded together with its $lookup'd author.
type postDocument struct {
	models.Post `bson:",inline"`
	AuthorInfo  []models.UserSummary `bson:"authorInfo"`
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now().UTC()
	post.UpdatedAt = post.CreatedAt
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	posts, err := r.aggregate(ctx, bson.D{{Key: "_id", Value: id}}, nil)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, ErrNotFound
	}
	return &posts[0], nil
}

// GetPosts lists posts, optionally filtered by a case-insensitive message search.
func (r *MongoPostRepository) GetPosts(ctx context.Context, query models.PostQuery) ([]models.Post, error) {
	match := bson.D{}
	if query.Search != "" {
		match = append(match, bson.E{Key: "message", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(query.Search),
			Options: "i",
		}})
	}

	var sort bson.D
	dir := 1
	if query.Descending {
		dir = -1
	}
	switch query.SortBy {
	case models.SortByCreatedAt:
		sort = bson.D{{Key: "createdAt", Value: dir}, {Key: "_id", Value: dir}}
	case models.SortByLikes:
		sort = bson.D{{Key: "likesCount", Value: dir}, {Key: "_id", Value: dir}}
	}
	return r.aggregate(ctx, match, sort)
}

// GetPostsByAuthor retrieves posts by a specific user, newest first
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Post, error) {
	return r.aggregate(ctx,
		bson.D{{Key: "author", Value: authorID}},
		bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
	)
}

// UpdatePost replaces the message of an existing post
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id primitive.ObjectID, message string) (*models.Post, error) {
	update := bson.M{
		"$set": bson.M{
			"message":   message,
			"updatedAt": time.Now().UTC(),
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.GetPostByID(ctx, id)
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLike adds userID to the likes set; liking twice leaves the set unchanged.
func (r *MongoPostRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return r.updateLikes(ctx, postID, bson.M{"$addToSet": bson.M{"likes": userID}})
}

// RemoveLike removes userID from the likes set; a non-liker is a no-op.
func (r *MongoPostRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	return r.updateLikes(ctx, postID, bson.M{"$pull": bson.M{"likes": userID}})
}

func (r *MongoPostRepository) updateLikes(ctx context.Context, postID primitive.ObjectID, update bson.M) (*models.Post, error) {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.GetPostByID(ctx, postID)
}

// aggregate runs match, optional sort and the author $lookup.
// A nil sort keeps natural (insertion) order.
func (r *MongoPostRepository) aggregate(ctx context.Context, match, sort bson.D) ([]models.Post, error) {
	pipeline := mongo.Pipeline{}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	if sort != nil {
		pipeline = append(pipeline,
			bson.D{{Key: "$addFields", Value: bson.M{
				"likesCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}},
			}}},
			bson.D{{Key: "$sort", Value: sort}},
		)
	}
	pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: bson.M{
		"from":         usersCollection,
		"localField":   "author",
		"foreignField": "_id",
		"as":           "authorInfo",
	}}})

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []postDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	posts := make([]models.Post, len(docs))
	for i, doc := range docs {
		posts[i] = doc.Post
		if posts[i].Likes == nil {
			posts[i].Likes = []primitive.ObjectID{}
		}
		if len(doc.AuthorInfo) > 0 {
			author := doc.AuthorInfo[0]
			posts[i].Author = &author
		}
	}
	return posts, nil
}
