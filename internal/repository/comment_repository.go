package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/brauliobolano/LinkedInClone/internal/models"
)

type CommentRepository struct {
	ColComments *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{ColComments: db.Collection("comments")}
}

func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	_, err := r.ColComments.InsertOne(ctx, c)
	return err
}

// FindByIDsNewestFirst dereferences comment ids. Ids with no document are skipped.
func (r *CommentRepository) FindByIDsNewestFirst(ctx context.Context, ids []bson.ObjectID) ([]models.Comment, error) {
	if len(ids) == 0 {
		return []models.Comment{}, nil
	}

	cur, err := r.ColComments.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(newestFirst),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Comment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindOrphanIDs lists comments that no post references any more.
func (r *CommentRepository) FindOrphanIDs(ctx context.Context) ([]bson.ObjectID, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "posts"},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "comments"},
			{Key: "as", Value: "owners"},
		}}},
		bson.D{{Key: "$match", Value: bson.D{{Key: "owners", Value: bson.D{{Key: "$size", Value: 0}}}}}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cur, err := r.ColComments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID bson.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	ids := make([]bson.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (r *CommentRepository) DeleteByIDs(ctx context.Context, ids []bson.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.ColComments.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
