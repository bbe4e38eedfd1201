package mongo

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"note-sync/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var unreachable = config.Config{
	MongoURI:    "mongodb://invalid/?connectTimeoutMS=1&serverSelectionTimeoutMS=1",
	MongoDBName: "test",
}

// stubDriver fails every call immediately.
type stubDriver struct {
	mu       sync.Mutex
	connects int
}

func (s *stubDriver) Connect(_ context.Context, _ *options.ClientOptions) (*mongo.Client, error) {
	s.mu.Lock()
	s.connects++
	s.mu.Unlock()
	return nil, context.DeadlineExceeded
}

func (s *stubDriver) Ping(_ context.Context, _ *mongo.Client) error {
	return context.DeadlineExceeded
}

func (s *stubDriver) Disconnect(_ context.Context, _ *mongo.Client) error { return nil }

// reset clears the singleton without going through Shutdown.
func reset() {
	mu.Lock()
	client = nil
	db = nil
	initErr = nil
	mu.Unlock()

	initOnce = sync.Once{}
	shutdownOnce = sync.Once{}
}

func withStubDriver(t *testing.T) *stubDriver {
	t.Helper()
	old := drv
	stub := &stubDriver{}
	drv = stub
	reset()
	t.Cleanup(func() {
		drv = old
		reset()
	})
	return stub
}

func TestInit_FirstCallWins(t *testing.T) {
	stub := withStubDriver(t)
	ctx := context.Background()

	const goroutines = 10
	var wg sync.WaitGroup
	errs := make([]error, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cli, database, err := Init(ctx, unreachable, silentLogger)
			assert.Nil(t, cli)
			assert.Nil(t, database)
			errs[i] = err
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, stub.connects)
	for _, err := range errs {
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
	assert.Nil(t, Client())
	assert.Nil(t, DB())
}

func TestShutdown_Idempotent(t *testing.T) {
	withStubDriver(t)
	ctx := context.Background()

	_, _, err := Init(ctx, unreachable, silentLogger)
	require.Error(t, err)

	assert.ErrorIs(t, Shutdown(ctx), ErrNotInitialized)
	assert.ErrorIs(t, Shutdown(ctx), ErrShutdown)
	assert.ErrorIs(t, Shutdown(ctx), ErrShutdown)
}

func TestPing_WithoutClient(t *testing.T) {
	withStubDriver(t)
	assert.ErrorIs(t, Ping(context.Background()), ErrNotInitialized)
}
