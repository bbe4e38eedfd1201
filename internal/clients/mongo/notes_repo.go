package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"time"

	"note-sync/internal/logger"
	"note-sync/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NotesRepo implements the notes.Repository interface for MongoDB
type NotesRepo struct {
	collection *mongo.Collection
}

// translateNotFound maps the driver ErrNoDocuments to the domain-level ErrNoteNotFound.
func translateNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notes.ErrNoteNotFound
	}
	return err
}

// NewNotesRepo creates a new notes repository
func NewNotesRepo(parentCtx context.Context, db *mongo.Database) (*NotesRepo, error) {
	collection := db.Collection("notes")

	indexes := []mongo.IndexModel{
		// default listing order
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "category", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "tags", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_favorite", Value: 1},
			},
		},
	}

	if err := ensureIndexes(parentCtx, collection, indexes...); err != nil {
		return nil, fmt.Errorf("%w: %w", notes.ErrCreateNotesRepo, err)
	}

	return &NotesRepo{
		collection: collection,
	}, nil
}

// Create creates a new note in the database
func (r *NotesRepo) Create(ctx context.Context, note *notes.Note) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, note)
	return err
}

// FindByID returns a note of userID.
func (r *NotesRepo) FindByID(ctx context.Context, userID, noteID bson.ObjectID) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var note notes.Note
	if err := r.collection.FindOne(ctx, ownedBy(userID, noteID)).Decode(&note); err != nil {
		return nil, translateNotFound(err)
	}
	return &note, nil
}

// List returns one page of userID's notes matching filter, newest first, plus the
// number of matches. Both come from a single aggregation.
func (r *NotesRepo) List(ctx context.Context, userID bson.ObjectID, filter notes.ListNotesRequest) ([]*notes.Note, int64, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var page struct {
		Rows  []*notes.Note `bson:"rows"`
		Total []countRow    `bson:"total"`
	}
	if err := r.aggregateOne(ctx, BuildListPipeline(userID, filter), &page); err != nil {
		return nil, 0, err
	}

	return page.Rows, firstCount(page.Total), nil
}

// BuildListPipeline matches BuildListFilter, sorts newest first and splits the
// result into the requested page and the total match count.
func BuildListPipeline(userID bson.ObjectID, filter notes.ListNotesRequest) mongo.Pipeline {
	rows := bson.A{bson.M{"$skip": int64(filter.Offset)}}
	if filter.Limit > 0 {
		rows = append(rows, bson.M{"$limit": int64(filter.Limit)})
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: BuildListFilter(userID, filter)}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$facet", Value: bson.M{
			"rows":  rows,
			"total": bson.A{bson.M{"$count": "n"}},
		}}},
	}
}

type countRow struct {
	N int64 `bson:"n"`
}

func firstCount(rows []countRow) int64 {
	if len(rows) == 0 {
		return 0
	}
	return rows[0].N
}

// aggregateOne runs a pipeline that yields at most one document and decodes it
// into out. out is left untouched when nothing comes back.
func (r *NotesRepo) aggregateOne(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	if !cursor.Next(ctx) {
		return cursor.Err()
	}
	return cursor.Decode(out)
}

// BuildListFilter translates a normalized list filter into a query document.
// Search is a case-insensitive substring match over title, content and tags.
func BuildListFilter(userID bson.ObjectID, filter notes.ListNotesRequest) bson.M {
	query := bson.M{"user_id": userID}

	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.IsFavorite != nil {
		query["is_favorite"] = *filter.IsFavorite
	}
	if len(filter.Tags) > 0 {
		query["tags"] = bson.M{"$in": filter.Tags}
	}
	if filter.Search != "" {
		regex := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"title": regex},
			bson.M{"content": regex},
			bson.M{"tags": regex},
		}
	}

	return query
}

// Update applies the set fields of patch to a note of userID.
func (r *NotesRepo) Update(ctx context.Context, userID, noteID bson.ObjectID, patch notes.UpdateNoteRequest) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updatedNote notes.Note
	err := r.collection.FindOneAndUpdate(ctx, ownedBy(userID, noteID), BuildUpdate(patch, time.Now().UTC()), opts).Decode(&updatedNote)
	if err != nil {
		return nil, translateNotFound(err)
	}

	return &updatedNote, nil
}

// BuildUpdate turns a partial update into a $set document. updated_at is always set.
func BuildUpdate(patch notes.UpdateNoteRequest, now time.Time) bson.M {
	set := bson.M{"updated_at": now}

	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}
	if patch.IsFavorite != nil {
		set["is_favorite"] = *patch.IsFavorite
	}
	if patch.Color != nil {
		set["color"] = *patch.Color
	}

	return bson.M{"$set": set}
}

// Delete removes a note of userID and returns it.
func (r *NotesRepo) Delete(ctx context.Context, userID, noteID bson.ObjectID) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var deleted notes.Note
	if err := r.collection.FindOneAndDelete(ctx, ownedBy(userID, noteID)).Decode(&deleted); err != nil {
		return nil, translateNotFound(err)
	}
	return &deleted, nil
}

// Counts returns note, favorite and distinct-category counts for userID.
func (r *NotesRepo) Counts(ctx context.Context, userID bson.ObjectID) (notes.Counts, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var agg struct {
		Notes      []countRow `bson:"notes"`
		Favorites  []countRow `bson:"favorites"`
		Categories []struct {
			Category notes.Category `bson:"_id"`
		} `bson:"categories"`
	}
	if err := r.aggregateOne(ctx, BuildCountsPipeline(userID), &agg); err != nil {
		return notes.Counts{}, err
	}

	c := notes.Counts{
		Notes:     firstCount(agg.Notes),
		Favorites: firstCount(agg.Favorites),
	}
	for _, row := range agg.Categories {
		if row.Category != "" {
			c.Categories = append(c.Categories, row.Category)
		}
	}
	slices.Sort(c.Categories)

	return c, nil
}

// BuildCountsPipeline computes every profile counter of userID in one pass.
func BuildCountsPipeline(userID bson.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$facet", Value: bson.M{
			"notes": bson.A{bson.M{"$count": "n"}},
			"favorites": bson.A{
				bson.M{"$match": bson.M{"is_favorite": true}},
				bson.M{"$count": "n"},
			},
			"categories": bson.A{bson.M{"$group": bson.M{"_id": "$category"}}},
		}}},
	}
}

func ownedBy(userID, noteID bson.ObjectID) bson.M {
	return bson.M{
		"_id":     noteID,
		"user_id": userID,
	}
}
