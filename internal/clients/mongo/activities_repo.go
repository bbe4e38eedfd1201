package mongo

import (
	"context"
	"time"

	"note-sync/internal/logger"
	"note-sync/internal/services/activity"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ActivitiesRepo implements activity.Repository for MongoDB
type ActivitiesRepo struct {
	collection *mongo.Collection
}

// NewActivitiesRepo creates the activities repository and its index.
func NewActivitiesRepo(parentCtx context.Context, db *mongo.Database) (*ActivitiesRepo, error) {
	collection := db.Collection("activities")

	err := ensureIndexes(parentCtx, collection, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	if err != nil {
		return nil, err
	}

	return &ActivitiesRepo{collection: collection}, nil
}

// Create inserts an activity.
func (r *ActivitiesRepo) Create(ctx context.Context, a *activity.Activity) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, a)
	return err
}

// ListRecent returns userID's newest activities.
func (r *ActivitiesRepo) ListRecent(ctx context.Context, userID bson.ObjectID, limit int) ([]*activity.Activity, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	var items []*activity.Activity
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CountSince counts userID's activities created at or after since.
func (r *ActivitiesRepo) CountSince(ctx context.Context, userID bson.ObjectID, since time.Time) (int64, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{
		"user_id":    userID,
		"created_at": bson.M{"$gte": since},
	})
}
