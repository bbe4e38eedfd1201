package mongo

import (
	"errors"
	"testing"
	"time"

	"note-sync/internal/services/notes"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestBuildListFilter(t *testing.T) {
	userID := bson.NewObjectID()
	fav := true

	t.Run("user scope only", func(t *testing.T) {
		assert.Equal(t, bson.M{"user_id": userID}, BuildListFilter(userID, notes.ListNotesRequest{}))
	})

	t.Run("every filter", func(t *testing.T) {
		got := BuildListFilter(userID, notes.ListNotesRequest{
			Search:     "a.b",
			Category:   notes.CategoryTravel,
			Tags:       []string{"europe"},
			IsFavorite: &fav,
		})

		regex := bson.M{"$regex": `a\.b`, "$options": "i"}
		assert.Equal(t, bson.M{
			"user_id":     userID,
			"category":    notes.CategoryTravel,
			"is_favorite": true,
			"tags":        bson.M{"$in": []string{"europe"}},
			"$or": bson.A{
				bson.M{"title": regex},
				bson.M{"content": regex},
				bson.M{"tags": regex},
			},
		}, got)
	})
}

func TestBuildUpdate(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	title := "Trip to Rome"
	tags := []string{}
	fav := false

	got := BuildUpdate(notes.UpdateNoteRequest{Title: &title, Tags: &tags, IsFavorite: &fav}, now)

	assert.Equal(t, bson.M{"$set": bson.M{
		"updated_at":  now,
		"title":       "Trip to Rome",
		"tags":        []string{},
		"is_favorite": false,
	}}, got)

	assert.Equal(t, bson.M{"$set": bson.M{"updated_at": now}}, BuildUpdate(notes.UpdateNoteRequest{}, now))
}

func TestTranslateNotFound(t *testing.T) {
	assert.ErrorIs(t, translateNotFound(mongo.ErrNoDocuments), notes.ErrNoteNotFound)

	other := errors.New("other")
	assert.Equal(t, other, translateNotFound(other))
}

func TestBuildListPipeline(t *testing.T) {
	userID := bson.NewObjectID()
	sort := bson.E{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}
	total := bson.A{bson.M{"$count": "n"}}

	t.Run("page and total in one stage", func(t *testing.T) {
		filter := notes.ListNotesRequest{Category: notes.CategoryWork, Limit: 20, Offset: 40}
		got := BuildListPipeline(userID, filter)

		assert.Equal(t, mongo.Pipeline{
			{{Key: "$match", Value: BuildListFilter(userID, filter)}},
			{sort},
			{{Key: "$facet", Value: bson.M{
				"rows":  bson.A{bson.M{"$skip": int64(40)}, bson.M{"$limit": int64(20)}},
				"total": total,
			}}},
		}, got)
	})

	t.Run("no limit keeps every row", func(t *testing.T) {
		got := BuildListPipeline(userID, notes.ListNotesRequest{})

		assert.Len(t, got, 3)
		assert.Equal(t, bson.D{{Key: "$facet", Value: bson.M{
			"rows":  bson.A{bson.M{"$skip": int64(0)}},
			"total": total,
		}}}, got[2])
	})
}

func TestBuildCountsPipeline(t *testing.T) {
	userID := bson.NewObjectID()

	got := BuildCountsPipeline(userID)

	assert.Equal(t, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$facet", Value: bson.M{
			"notes": bson.A{bson.M{"$count": "n"}},
			"favorites": bson.A{
				bson.M{"$match": bson.M{"is_favorite": true}},
				bson.M{"$count": "n"},
			},
			"categories": bson.A{bson.M{"$group": bson.M{"_id": "$category"}}},
		}}},
	}, got)
}

func TestFirstCount(t *testing.T) {
	assert.Zero(t, firstCount(nil))
	assert.Equal(t, int64(7), firstCount([]countRow{{N: 7}}))
}
