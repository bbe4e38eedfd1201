package main

import (
	"context"
	"fmt"
	"log/slog"

	"note-sync/cmd/server/handlers"
	"note-sync/internal/clients/memory"
	"note-sync/internal/clients/mongo"
	"note-sync/internal/config"
	"note-sync/internal/services/activity"
	"note-sync/internal/services/auth"
	"note-sync/internal/services/notes"
)

// stores are the repositories behind the entity services.
type stores struct {
	users      auth.UsersRepo
	notes      notes.Repository
	activities activity.Repository
	ping       handlers.Pinger
	close      func(context.Context) error
}

// openStores connects the repositories selected by STORE_DRIVER.
func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return memoryStores(), nil
	case config.StoreMongo:
		return mongoStores(ctx, cfg, log)
	default:
		return stores{}, config.ErrStoreDriverUnsupported
	}
}

func memoryStores() stores {
	return stores{
		users:      memory.NewUsersRepo(),
		notes:      memory.NewNotesRepo(),
		activities: memory.NewActivitiesRepo(),
		ping:       func(context.Context) error { return nil },
		close:      func(context.Context) error { return nil },
	}
}

func mongoStores(ctx context.Context, cfg config.Config, log *slog.Logger) (stores, error) {
	_, db, err := mongo.Init(ctx, cfg, log)
	if err != nil {
		return stores{}, fmt.Errorf("mongo init: %w", err)
	}

	users, err := mongo.NewUsersRepo(ctx, db)
	if err != nil {
		return stores{}, err
	}
	notesRepo, err := mongo.NewNotesRepo(ctx, db)
	if err != nil {
		return stores{}, err
	}
	activities, err := mongo.NewActivitiesRepo(ctx, db)
	if err != nil {
		return stores{}, err
	}

	log.Info("connected to mongo", "db", db.Name())
	return stores{
		users:      users,
		notes:      notesRepo,
		activities: activities,
		ping:       mongo.Ping,
		close:      mongo.Shutdown,
	}, nil
}
