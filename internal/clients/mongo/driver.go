package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// driver is the slice of the mongo driver used by Init, Ping and Shutdown.
// Tests swap it for a stub.
type driver interface {
	Connect(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)
	Ping(ctx context.Context, cli *mongo.Client) error
	Disconnect(ctx context.Context, cli *mongo.Client) error
}

type liveDriver struct{}

func (liveDriver) Connect(_ context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	cli, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return cli, nil
}

// Ping reads from the primary so a node that lost its replica set fails the check.
func (liveDriver) Ping(ctx context.Context, cli *mongo.Client) error {
	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	return nil
}

func (liveDriver) Disconnect(ctx context.Context, cli *mongo.Client) error {
	if err := cli.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	return nil
}
