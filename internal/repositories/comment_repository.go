package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/acebook/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	// GetComments lists every comment newest first, with author and post populated.
	GetComments(ctx context.Context) ([]models.Comment, error)
	// GetCommentsByPostID lists a post's comments oldest first, with author populated.
	GetCommentsByPostID(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
	UpdateComment(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection(commentsCollection)}
}

type commentDocument struct {
	models.Comment `bson:",inline"`
	AuthorInfo     []models.UserSummary `bson:"authorInfo"`
	PostInfo       []models.PostSummary `bson:"postInfo"`
}

func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()
	comment.UpdatedAt = comment.CreatedAt
	if _, err := r.collection.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	comments, err := r.aggregate(ctx, bson.D{{Key: "_id", Value: id}}, nil, true)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, ErrNotFound
	}
	return &comments[0], nil
}

func (r *MongoCommentRepository) GetComments(ctx context.Context) ([]models.Comment, error) {
	return r.aggregate(ctx, nil, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, true)
}

func (r *MongoCommentRepository) GetCommentsByPostID(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	return r.aggregate(ctx,
		bson.D{{Key: "post", Value: postID}},
		bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
		false,
	)
}

func (r *MongoCommentRepository) UpdateComment(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.GetCommentByID(ctx, id)
}

func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCommentRepository) aggregate(ctx context.Context, match, sort bson.D, withPost bool) ([]models.Comment, error) {
	pipeline := mongo.Pipeline{}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	if sort != nil {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sort}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: bson.M{
		"from":         usersCollection,
		"localField":   "author",
		"foreignField": "_id",
		"as":           "authorInfo",
	}}})
	if withPost {
		pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: bson.M{
			"from":         postsCollection,
			"localField":   "post",
			"foreignField": "_id",
			"as":           "postInfo",
		}}})
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []commentDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	comments := make([]models.Comment, len(docs))
	for i, doc := range docs {
		comments[i] = doc.Comment
		if len(doc.AuthorInfo) > 0 {
			// comments expose only the author's email
			author := doc.AuthorInfo[0]
			comments[i].Author = &models.UserSummary{ID: author.ID, Email: author.Email}
		}
		if len(doc.PostInfo) > 0 {
			post := doc.PostInfo[0]
			comments[i].Post = &post
		}
	}
	return comments, nil
}
