package mongo

import (
	"context"
	"fmt"
	"time"

	"note-sync/internal/logger"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// OpTimeout bounds a single repository call.
const OpTimeout = 5 * time.Second

// repoCtx caps parent at OpTimeout. A parent that is already done or expires
// sooner is used as is.
func repoCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent.Err() != nil {
		return parent, func() {}
	}
	if dl, ok := parent.Deadline(); ok && time.Until(dl) <= OpTimeout {
		return parent, func() {}
	}
	return context.WithTimeout(parent, OpTimeout)
}

// ensureIndexes creates the indexes of coll. Existing identical indexes are kept.
func ensureIndexes(parent context.Context, coll *mongo.Collection, models ...mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(parent, OpTimeout)
	defer cancel()

	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil && !mongo.IsDuplicateKeyError(err) {
		logger.L().Error("failed to create indexes", "collection", coll.Name(), "error", err)
		return fmt.Errorf("create %s indexes: %w", coll.Name(), err)
	}
	logger.L().Debug("indexes ready", "collection", coll.Name(), "count", len(models))
	return nil
}
