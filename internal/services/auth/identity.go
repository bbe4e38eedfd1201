package auth

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Identity is the authenticated principal attached to a request context.
type Identity struct {
	UserID bson.ObjectID
	Email  string
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extracts the identity stored by WithIdentity. The second return
// is false for anonymous contexts and for a zero user id.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID.IsZero() {
		return Identity{}, false
	}
	return id, true
}
