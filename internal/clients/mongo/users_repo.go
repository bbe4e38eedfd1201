package mongo

import (
	"context"
	"errors"
	"fmt"

	"note-sync/internal/services/auth"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UsersRepo stores accounts in the users collection, unique by email.
type UsersRepo struct {
	collection *mongo.Collection
}

// NewUsersRepo creates the users repository and its unique email index.
func NewUsersRepo(parentCtx context.Context, db *mongo.Database) (*UsersRepo, error) {
	collection := db.Collection("users")

	err := ensureIndexes(parentCtx, collection, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}

	return &UsersRepo{collection: collection}, nil
}

// Create inserts user. A taken email yields auth.ErrDuplicate.
func (r *UsersRepo) Create(ctx context.Context, user *auth.User) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByEmail finds a user by email address
func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var user auth.User
	switch err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, auth.ErrUserNotFound
	case err != nil:
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}
