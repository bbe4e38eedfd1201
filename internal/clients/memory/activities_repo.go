package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"note-sync/internal/services/activity"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ActivitiesRepo implements activity.Repository in memory.
type ActivitiesRepo struct {
	mu    sync.RWMutex
	items []*activity.Activity
}

// NewActivitiesRepo creates an empty activities repository.
func NewActivitiesRepo() *ActivitiesRepo {
	return &ActivitiesRepo{}
}

// Create appends a copy of a.
func (r *ActivitiesRepo) Create(ctx context.Context, a *activity.Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := *a
	r.mu.Lock()
	r.items = append(r.items, &c)
	r.mu.Unlock()
	return nil
}

// ListRecent returns userID's newest activities.
func (r *ActivitiesRepo) ListRecent(ctx context.Context, userID bson.ObjectID, limit int) ([]*activity.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []*activity.Activity
	for _, a := range r.items {
		if a.UserID == userID {
			c := *a
			out = append(out, &c)
		}
	}
	r.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b *activity.Activity) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountSince counts userID's activities created at or after since.
func (r *ActivitiesRepo) CountSince(ctx context.Context, userID bson.ObjectID, since time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, a := range r.items {
		if a.UserID == userID && !a.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
