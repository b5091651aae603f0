package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/brauliobolano/LinkedInClone/internal/models"
)

// AddLike puts userID into the likes set. Liking twice leaves a single entry.
func (r *PostRepository) AddLike(ctx context.Context, postID bson.ObjectID, userID string) (*models.Post, error) {
	return r.updateLikes(ctx, postID, bson.M{"$addToSet": bson.M{"likes": userID}})
}

// RemoveLike pulls userID from the likes set; absent ids are a no-op.
func (r *PostRepository) RemoveLike(ctx context.Context, postID bson.ObjectID, userID string) (*models.Post, error) {
	return r.updateLikes(ctx, postID, bson.M{"$pull": bson.M{"likes": userID}})
}

func (r *PostRepository) updateLikes(ctx context.Context, postID bson.ObjectID, update bson.M) (*models.Post, error) {
	var p models.Post
	err := r.ColPosts.FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
