package memory

import (
	"context"
	"testing"
	"time"

	"note-sync/internal/services/activity"
	"note-sync/internal/services/auth"
	"note-sync/internal/services/notes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func seedNote(t *testing.T, r *NotesRepo, userID bson.ObjectID, title string, at time.Time, mutate ...func(*notes.Note)) *notes.Note {
	t.Helper()
	n := &notes.Note{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Content:   title + " content",
		Category:  notes.CategoryGeneral,
		Color:     notes.DefaultColor,
		CreatedAt: at,
		UpdatedAt: at,
	}
	for _, m := range mutate {
		m(n)
	}
	require.NoError(t, r.Create(context.Background(), n))
	return n
}

func TestNotesRepo_OwnershipIsolation(t *testing.T) {
	r := NewNotesRepo()
	ctx := context.Background()
	alice, bob := bson.NewObjectID(), bson.NewObjectID()
	n := seedNote(t, r, alice, "secret", time.Now())

	_, err := r.FindByID(ctx, bob, n.ID)
	assert.ErrorIs(t, err, notes.ErrNoteNotFound)

	title := "hijacked"
	_, err = r.Update(ctx, bob, n.ID, notes.UpdateNoteRequest{Title: &title})
	assert.ErrorIs(t, err, notes.ErrNoteNotFound)

	_, err = r.Delete(ctx, bob, n.ID)
	assert.ErrorIs(t, err, notes.ErrNoteNotFound)

	items, total, err := r.List(ctx, bob, notes.ListNotesRequest{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)

	got, err := r.FindByID(ctx, alice, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Title)
}

func TestNotesRepo_ListOrderAndPaging(t *testing.T) {
	r := NewNotesRepo()
	ctx := context.Background()
	userID := bson.NewObjectID()
	t0 := time.Now().UTC()
	oldest := seedNote(t, r, userID, "one", t0)
	middle := seedNote(t, r, userID, "two", t0.Add(time.Minute))
	newest := seedNote(t, r, userID, "three", t0.Add(2*time.Minute))

	items, total, err := r.List(ctx, userID, notes.ListNotesRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	assert.Equal(t, newest.ID, items[0].ID)
	assert.Equal(t, middle.ID, items[1].ID)

	items, _, err = r.List(ctx, userID, notes.ListNotesRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, oldest.ID, items[0].ID)

	items, _, err = r.List(ctx, userID, notes.ListNotesRequest{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNotesRepo_Search(t *testing.T) {
	r := NewNotesRepo()
	ctx := context.Background()
	userID := bson.NewObjectID()
	seedNote(t, r, userID, "Trip to Paris", time.Now(), func(n *notes.Note) {
		n.Content = "Remember the packing list"
	})

	for search, want := range map[string]int{"paris": 1, "packing": 1, "ROME": 0} {
		items, _, err := r.List(ctx, userID, notes.ListNotesRequest{Search: search})
		require.NoError(t, err)
		assert.Len(t, items, want, search)
	}
}

func TestNotesRepo_UpdateAndDelete(t *testing.T) {
	r := NewNotesRepo()
	ctx := context.Background()
	userID := bson.NewObjectID()
	created := time.Now().UTC().Add(-time.Hour)
	n := seedNote(t, r, userID, "draft", created)

	fav := true
	updated, err := r.Update(ctx, userID, n.ID, notes.UpdateNoteRequest{IsFavorite: &fav})
	require.NoError(t, err)
	assert.True(t, updated.IsFavorite)
	assert.Equal(t, "draft", updated.Title)
	assert.True(t, updated.UpdatedAt.After(created))

	updated.Title = "mutated by caller"
	again, err := r.FindByID(ctx, userID, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", again.Title, "callers get copies")

	removed, err := r.Delete(ctx, userID, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, removed.ID)

	_, err = r.FindByID(ctx, userID, n.ID)
	assert.ErrorIs(t, err, notes.ErrNoteNotFound)
}

func TestNotesRepo_Counts(t *testing.T) {
	r := NewNotesRepo()
	userID := bson.NewObjectID()
	seedNote(t, r, userID, "a", time.Now(), func(n *notes.Note) { n.Category = notes.CategoryWork; n.IsFavorite = true })
	seedNote(t, r, userID, "b", time.Now(), func(n *notes.Note) { n.Category = notes.CategoryWork })
	seedNote(t, r, userID, "c", time.Now(), func(n *notes.Note) { n.Category = notes.CategoryTravel })
	seedNote(t, r, bson.NewObjectID(), "other", time.Now())

	c, err := r.Counts(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, notes.Counts{
		Notes:      3,
		Favorites:  1,
		Categories: []notes.Category{notes.CategoryTravel, notes.CategoryWork},
	}, c)
}

func TestNotesRepo_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewNotesRepo().List(ctx, bson.NewObjectID(), notes.ListNotesRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestActivitiesRepo(t *testing.T) {
	r := NewActivitiesRepo()
	ctx := context.Background()
	userID := bson.NewObjectID()
	now := time.Now().UTC()

	for i, age := range []time.Duration{10 * 24 * time.Hour, time.Hour, time.Minute} {
		require.NoError(t, r.Create(ctx, &activity.Activity{
			ID:        bson.NewObjectID(),
			UserID:    userID,
			Title:     []string{"old", "recent", "newest"}[i],
			CreatedAt: now.Add(-age),
		}))
	}
	require.NoError(t, r.Create(ctx, &activity.Activity{ID: bson.NewObjectID(), UserID: bson.NewObjectID(), CreatedAt: now}))

	items, err := r.ListRecent(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "newest", items[0].Title)
	assert.Equal(t, "recent", items[1].Title)

	n, err := r.CountSince(ctx, userID, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestUsersRepo(t *testing.T) {
	r := NewUsersRepo()
	ctx := context.Background()
	u := &auth.User{ID: bson.NewObjectID(), Email: "a@example.com"}

	require.NoError(t, r.Create(ctx, u))
	assert.ErrorIs(t, r.Create(ctx, u), auth.ErrDuplicate)

	got, err := r.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = r.FindByEmail(ctx, "b@example.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
