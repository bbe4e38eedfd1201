// Package notesync is the per-user synchronization client: cached reads backed by
// the entity services and optimistic mutations run through the coordinator.
package notesync

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"note-sync/internal/mutation"
	"note-sync/internal/querycache"
	"note-sync/internal/result"
	"note-sync/internal/services/activity"
	"note-sync/internal/services/auth"
	"note-sync/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// NoteService is the note entity service as seen by the client.
type NoteService interface {
	Create(ctx context.Context, req notes.CreateNoteRequest) result.Result[*notes.NoteResponse]
	Get(ctx context.Context, noteID bson.ObjectID) result.Result[*notes.NoteResponse]
	List(ctx context.Context, req notes.ListNotesRequest) result.Result[*notes.ListNotesResponse]
	Update(ctx context.Context, noteID bson.ObjectID, req notes.UpdateNoteRequest) result.Result[*notes.NoteResponse]
	Delete(ctx context.Context, noteID bson.ObjectID) result.Result[*notes.DeleteNoteResponse]
	Stats(ctx context.Context) result.Result[*notes.Stats]
}

// ActivityService is the activity entity service as seen by the client.
type ActivityService interface {
	ListRecent(ctx context.Context, limit int) result.Result[*activity.ListActivitiesResponse]
}

// Client serves one authenticated user. Cached values are shared between callers
// and must not be modified.
type Client struct {
	identity   auth.Identity
	notes      NoteService
	activities ActivityService
	cache      *querycache.Cache
	coord      *mutation.Coordinator
	log        *slog.Logger
	now        func() time.Time
	// lastUsed is the unix nano time of the last Registry.For.
	lastUsed atomic.Int64
}

// Identity returns the user the client acts for.
func (c *Client) Identity() auth.Identity {
	return c.identity
}

// Cache exposes the client's cache for reads, subscriptions and invalidation.
// Values are written only by loads and the mutation coordinator.
func (c *Client) Cache() querycache.View {
	return c.cache.View()
}

// Subscribe registers l for changes of key.
func (c *Client) Subscribe(key querycache.Key, l querycache.Listener) func() {
	return c.cache.Subscribe(key, l)
}

func (c *Client) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, c.lastUsed.Load()))
}

func (c *Client) scope(ctx context.Context) context.Context {
	return auth.WithIdentity(ctx, c.identity)
}

// Notes returns one page of notes matching filter.
func (c *Client) Notes(ctx context.Context, filter notes.ListNotesRequest) result.Result[*notes.ListNotesResponse] {
	filter, verr := notes.PrepareList(filter)
	if verr != nil {
		return result.Fail[*notes.ListNotesResponse](verr)
	}
	return read(c.scope(ctx), c.cache, NoteListKey(filter), func(ctx context.Context) result.Result[*notes.ListNotesResponse] {
		return c.notes.List(ctx, filter)
	})
}

// Note returns a single note.
func (c *Client) Note(ctx context.Context, id bson.ObjectID) result.Result[*notes.NoteResponse] {
	return read(c.scope(ctx), c.cache, NoteKey(id), func(ctx context.Context) result.Result[*notes.NoteResponse] {
		return c.notes.Get(ctx, id)
	})
}

// Activities returns the newest activities.
func (c *Client) Activities(ctx context.Context, limit int) result.Result[*activity.ListActivitiesResponse] {
	limit = activity.ClampLimit(limit)
	return read(c.scope(ctx), c.cache, ActivitiesKey(limit), func(ctx context.Context) result.Result[*activity.ListActivitiesResponse] {
		return c.activities.ListRecent(ctx, limit)
	})
}

// Stats returns the profile statistics.
func (c *Client) Stats(ctx context.Context) result.Result[*notes.Stats] {
	return read(c.scope(ctx), c.cache, StatsKey, func(ctx context.Context) result.Result[*notes.Stats] {
		return c.notes.Stats(ctx)
	})
}

func read[T any](ctx context.Context, cache *querycache.Cache, key querycache.Key, load func(context.Context) result.Result[T]) result.Result[T] {
	v, err := querycache.FetchAs(ctx, cache, key, func(ctx context.Context) (T, error) {
		return load(ctx).Unwrap()
	})
	if err != nil {
		return result.Fail[T](err)
	}
	return result.Ok(v)
}

// afterWrite lists what every note mutation makes stale besides the notes themselves.
var afterWrite = []querycache.Key{ActivitiesRoot, StatsKey}

// CreateNote creates a note. Cached lists change only once the store confirms.
func (c *Client) CreateNote(ctx context.Context, req notes.CreateNoteRequest) result.Result[*notes.NoteResponse] {
	req, verr := notes.PrepareCreate(req)
	if verr != nil {
		return result.Fail[*notes.NoteResponse](verr)
	}

	plan := mutation.Plan{
		Name:       "create_note",
		Invalidate: append([]querycache.Key{NoteListsRoot}, afterWrite...),
	}
	return mutation.Execute(c.scope(ctx), c.coord, plan, func(ctx context.Context) result.Result[*notes.NoteResponse] {
		return c.notes.Create(ctx, req)
	})
}

// UpdateNote merges req into every cached copy of the note, then writes it.
func (c *Client) UpdateNote(ctx context.Context, id bson.ObjectID, req notes.UpdateNoteRequest) result.Result[*notes.NoteResponse] {
	req, verr := notes.PrepareUpdate(req)
	if verr != nil {
		return result.Fail[*notes.NoteResponse](verr)
	}

	now := c.now()
	patch := func(n *notes.Note) *notes.Note { return notes.ApplyPatch(n, req, now) }

	plan := mutation.Plan{
		Name:     "update_note",
		Snapshot: []querycache.Key{NotesRoot},
		Optimistic: func(tx *querycache.Tx) {
			tx.Patch(NoteListsRoot, querycache.PatchAs(func(_ querycache.Key, page *notes.ListNotesResponse) (*notes.ListNotesResponse, bool) {
				return replaceRow(page, id, patch)
			}))
			tx.Patch(NoteKey(id), querycache.PatchAs(func(_ querycache.Key, r *notes.NoteResponse) (*notes.NoteResponse, bool) {
				if r == nil || r.Note == nil {
					return r, false
				}
				return &notes.NoteResponse{Note: patch(r.Note)}, true
			}))
		},
		Invalidate: append([]querycache.Key{NotesRoot}, afterWrite...),
	}
	return mutation.Execute(c.scope(ctx), c.coord, plan, func(ctx context.Context) result.Result[*notes.NoteResponse] {
		return c.notes.Update(ctx, id, req)
	})
}

// DeleteNote drops the note from cached lists and removes its item entry, then
// deletes it from the store.
func (c *Client) DeleteNote(ctx context.Context, id bson.ObjectID) result.Result[*notes.DeleteNoteResponse] {
	item := NoteKey(id)
	plan := mutation.Plan{
		Name:     "delete_note",
		Snapshot: []querycache.Key{NotesRoot},
		Optimistic: func(tx *querycache.Tx) {
			tx.Patch(NoteListsRoot, querycache.PatchAs(func(_ querycache.Key, page *notes.ListNotesResponse) (*notes.ListNotesResponse, bool) {
				return dropRow(page, id)
			}))
			tx.Remove(item)
		},
		Invalidate: append([]querycache.Key{NoteListsRoot}, afterWrite...),
		Remove:     []querycache.Key{item},
	}
	return mutation.Execute(c.scope(ctx), c.coord, plan, func(ctx context.Context) result.Result[*notes.DeleteNoteResponse] {
		return c.notes.Delete(ctx, id)
	})
}

func rowIndex(page *notes.ListNotesResponse, id bson.ObjectID) int {
	if page == nil {
		return -1
	}
	return slices.IndexFunc(page.Notes, func(n *notes.Note) bool { return n.ID == id })
}

func replaceRow(page *notes.ListNotesResponse, id bson.ObjectID, patch func(*notes.Note) *notes.Note) (*notes.ListNotesResponse, bool) {
	i := rowIndex(page, id)
	if i < 0 {
		return page, false
	}
	rows := slices.Clone(page.Notes)
	rows[i] = patch(rows[i])
	return &notes.ListNotesResponse{Notes: rows, Total: page.Total}, true
}

func dropRow(page *notes.ListNotesResponse, id bson.ObjectID) (*notes.ListNotesResponse, bool) {
	i := rowIndex(page, id)
	if i < 0 {
		return page, false
	}
	rows := slices.Delete(slices.Clone(page.Notes), i, i+1)
	return &notes.ListNotesResponse{Notes: rows, Total: max(page.Total-1, 0)}, true
}
