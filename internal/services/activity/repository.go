package activity

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Repository persists activities. Every call is scoped to userID.
type Repository interface {
	Create(ctx context.Context, a *Activity) error
	// ListRecent returns at most limit activities, newest first.
	ListRecent(ctx context.Context, userID bson.ObjectID, limit int) ([]*Activity, error)
	CountSince(ctx context.Context, userID bson.ObjectID, since time.Time) (int64, error)
}
