// Package memory is a process-local implementation of the store contracts, used
// for STORE_DRIVER=memory and in tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"note-sync/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// NotesRepo implements notes.Repository in memory.
type NotesRepo struct {
	mu    sync.RWMutex
	notes map[bson.ObjectID]*notes.Note
	now   func() time.Time
}

// NewNotesRepo creates an empty notes repository.
func NewNotesRepo() *NotesRepo {
	return &NotesRepo{
		notes: make(map[bson.ObjectID]*notes.Note),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a copy of n.
func (r *NotesRepo) Create(ctx context.Context, n *notes.Note) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[n.ID] = n.Clone()
	return nil
}

// FindByID returns the note when it belongs to userID.
func (r *NotesRepo) FindByID(ctx context.Context, userID, noteID bson.ObjectID) (*notes.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.owned(userID, noteID)
	if !ok {
		return nil, notes.ErrNoteNotFound
	}
	return n.Clone(), nil
}

// List returns the page of userID's notes matching filter, newest first.
func (r *NotesRepo) List(ctx context.Context, userID bson.ObjectID, filter notes.ListNotesRequest) ([]*notes.Note, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	var matched []*notes.Note
	for _, n := range r.notes {
		if n.UserID == userID && notes.Matches(n, filter) {
			matched = append(matched, n.Clone())
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, notes.Newer)
	total := int64(len(matched))

	start := min(filter.Offset, len(matched))
	end := len(matched)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(matched))
	}
	return matched[start:end], total, nil
}

// Update merges patch into the note and refreshes updated_at.
func (r *NotesRepo) Update(ctx context.Context, userID, noteID bson.ObjectID, patch notes.UpdateNoteRequest) (*notes.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.owned(userID, noteID)
	if !ok {
		return nil, notes.ErrNoteNotFound
	}
	updated := notes.ApplyPatch(n, patch, r.now())
	r.notes[noteID] = updated
	return updated.Clone(), nil
}

// Delete removes the note and returns it.
func (r *NotesRepo) Delete(ctx context.Context, userID, noteID bson.ObjectID) (*notes.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.owned(userID, noteID)
	if !ok {
		return nil, notes.ErrNoteNotFound
	}
	delete(r.notes, noteID)
	return n, nil
}

// Counts summarises userID's notes.
func (r *NotesRepo) Counts(ctx context.Context, userID bson.ObjectID) (notes.Counts, error) {
	if err := ctx.Err(); err != nil {
		return notes.Counts{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var c notes.Counts
	seen := map[notes.Category]bool{}
	for _, n := range r.notes {
		if n.UserID != userID {
			continue
		}
		c.Notes++
		if n.IsFavorite {
			c.Favorites++
		}
		if !seen[n.Category] {
			seen[n.Category] = true
			c.Categories = append(c.Categories, n.Category)
		}
	}
	slices.Sort(c.Categories)
	return c, nil
}

func (r *NotesRepo) owned(userID, noteID bson.ObjectID) (*notes.Note, bool) {
	n, ok := r.notes[noteID]
	if !ok || n.UserID != userID {
		return nil, false
	}
	return n, true
}
