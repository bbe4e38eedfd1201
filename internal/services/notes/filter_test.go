package notes

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestMatches_Search(t *testing.T) {
	n := &Note{
		Title:   "Trip to Paris",
		Content: "Remember the packing list",
		Tags:    []string{"Europe", "summer"},
	}

	tests := []struct {
		search string
		want   bool
	}{
		{"paris", true},
		{"PACKING", true},
		{"europe", true},
		{"umm", true},
		{"ROME", false},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(n, ListNotesRequest{Search: tt.search}))
		})
	}
}

func TestMatches_Filters(t *testing.T) {
	yes, no := true, false
	n := &Note{Category: CategoryWork, Tags: []string{"q3", "okr"}, IsFavorite: true}

	assert.True(t, Matches(n, ListNotesRequest{Category: CategoryWork}))
	assert.False(t, Matches(n, ListNotesRequest{Category: CategoryHealth}))
	assert.True(t, Matches(n, ListNotesRequest{IsFavorite: &yes}))
	assert.False(t, Matches(n, ListNotesRequest{IsFavorite: &no}))
	assert.True(t, Matches(n, ListNotesRequest{Tags: []string{"okr", "missing"}}))
	assert.False(t, Matches(n, ListNotesRequest{Tags: []string{"missing"}}))
}

func TestApplyPatch(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(time.Hour)
	orig := &Note{ID: bson.NewObjectID(), Title: "a", Content: "b", Tags: []string{"x"}, CreatedAt: created, UpdatedAt: created}
	title := "c"
	tags := []string{"y"}

	got := ApplyPatch(orig, UpdateNoteRequest{Title: &title, Tags: &tags}, now)

	assert.Equal(t, "c", got.Title)
	assert.Equal(t, "b", got.Content)
	assert.Equal(t, []string{"y"}, got.Tags)
	assert.Equal(t, now, got.UpdatedAt)
	assert.Equal(t, "a", orig.Title, "original is not mutated")
	assert.Equal(t, []string{"x"}, orig.Tags)

	tags[0] = "z"
	assert.Equal(t, []string{"y"}, got.Tags, "patch slice is copied")
}

func TestNewer(t *testing.T) {
	t0 := time.Now()
	older := &Note{ID: bson.NewObjectID(), CreatedAt: t0}
	sameA := &Note{ID: bson.NewObjectID(), CreatedAt: t0.Add(time.Second)}
	sameB := &Note{ID: bson.NewObjectID(), CreatedAt: t0.Add(time.Second)}

	list := []*Note{older, sameA, sameB}
	slices.SortFunc(list, Newer)

	assert.Equal(t, []*Note{sameB, sameA, older}, list)
}

func TestPrepareList(t *testing.T) {
	got, err := PrepareList(ListNotesRequest{Tags: []string{""}})
	assert.Nil(t, err)
	assert.Nil(t, got.Tags)
	assert.Equal(t, DefaultLimit, got.Limit)

	_, err = PrepareList(ListNotesRequest{Offset: -1})
	assert.NotNil(t, err)
}

func TestCategories(t *testing.T) {
	cats := Categories()
	assert.Len(t, cats, 8)
	assert.Equal(t, CategoryInfo{CategoryGeneral, "General", "#6b7280"}, cats[0])
	assert.True(t, CategoryRecipes.Valid())
	assert.False(t, Category("music").Valid())
}
