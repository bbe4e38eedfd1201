package notes

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Repository is the remote data store contract for notes. Every call is scoped to
// userID; a note of another user is reported as ErrNoteNotFound.
type Repository interface {
	Create(ctx context.Context, n *Note) error
	FindByID(ctx context.Context, userID, noteID bson.ObjectID) (*Note, error)
	// List applies filter (already normalized) and returns one page plus the total
	// number of matches.
	List(ctx context.Context, userID bson.ObjectID, filter ListNotesRequest) ([]*Note, int64, error)
	// Update applies the non-nil fields of patch and refreshes updated_at.
	Update(ctx context.Context, userID, noteID bson.ObjectID, patch UpdateNoteRequest) (*Note, error)
	// Delete removes the note in one round trip and returns what was removed.
	Delete(ctx context.Context, userID, noteID bson.ObjectID) (*Note, error)
	Counts(ctx context.Context, userID bson.ObjectID) (Counts, error)
}

// Bus defines the interface for event broadcasting
type Bus interface {
	Broadcast(ctx context.Context, ev NoteEvent)
}
