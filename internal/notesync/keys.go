package notesync

import (
	"note-sync/internal/querycache"
	"note-sync/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Cache keys. Lists and items share the "notes" root so one prefix invalidates both.
var (
	NotesRoot      = querycache.NewKey("notes")
	NoteListsRoot  = querycache.NewKey("notes", "list")
	NoteItemsRoot  = querycache.NewKey("notes", "item")
	ActivitiesRoot = querycache.NewKey("activities")
	StatsKey       = querycache.NewKey("user-stats")
)

// NoteListKey is the key of one normalized list filter.
func NoteListKey(filter notes.ListNotesRequest) querycache.Key {
	return querycache.NewKey("notes", "list", filter)
}

// NoteKey is the key of one note.
func NoteKey(id bson.ObjectID) querycache.Key {
	return querycache.NewKey("notes", "item", id.Hex())
}

// ActivitiesKey is the key of the feed with the given (clamped) limit.
func ActivitiesKey(limit int) querycache.Key {
	return querycache.NewKey("activities", limit)
}
