package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/brauliobolano/LinkedInClone/internal/models"
)

var ErrNotFound = errors.New("document not found")

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

type PostRepository struct {
	ColPosts *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{ColPosts: db.Collection("posts")}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = bson.NewObjectID()
	}
	_, err := r.ColPosts.InsertOne(ctx, post)
	return err
}

func (r *PostRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Post, error) {
	var p models.Post
	err := r.ColPosts.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindAllNewestFirst returns every post; the feed is deliberately unbounded.
func (r *PostRepository) FindAllNewestFirst(ctx context.Context) ([]models.Post, error) {
	cur, err := r.ColPosts.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// AppendComment pushes commentID onto the post's ordered comment list.
func (r *PostRepository) AppendComment(ctx context.Context, postID, commentID bson.ObjectID, at time.Time) error {
	res, err := r.ColPosts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{
			"$push": bson.M{"comments": commentID},
			"$set":  bson.M{"updated_at": at.UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes only the post document; referenced comments stay.
func (r *PostRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.ColPosts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
