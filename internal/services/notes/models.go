package notes

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Field limits.
const (
	TitleMaxLength   = 100
	ContentMaxLength = 10000
	MaxTags          = 10
	DefaultLimit     = 20
	MaxLimit         = 100
	DefaultColor     = "#ffffff"
)

// Note is a user-owned text note.
type Note struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" swaggertype:"string" example:"683cdb8aa96ad71e8e075bd1"`
	UserID     bson.ObjectID `bson:"user_id" json:"user_id" swaggertype:"string" example:"683cdb8aa96ad71e8e075bd0"`
	Title      string        `bson:"title" json:"title" example:"Trip to Paris"`
	Content    string        `bson:"content" json:"content" example:"Remember the packing list"`
	Category   Category      `bson:"category" json:"category" example:"travel"`
	Tags       []string      `bson:"tags" json:"tags" example:"europe,summer"`
	IsFavorite bool          `bson:"is_favorite" json:"is_favorite" example:"false"`
	Color      string        `bson:"color" json:"color" example:"#ffffff"`
	CreatedAt  time.Time     `bson:"created_at" json:"created_at" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt  time.Time     `bson:"updated_at" json:"updated_at" example:"2025-06-01T23:00:26.005703677Z"`
}

// Clone returns a deep copy of n.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	c := *n
	if n.Tags != nil {
		c.Tags = append([]string(nil), n.Tags...)
	}
	return &c
}

// CreateNoteRequest represents a note creation request
type CreateNoteRequest struct {
	Title      string   `json:"title" validate:"required,max=100" example:"Trip to Paris"`
	Content    string   `json:"content" validate:"required,max=10000" example:"Remember the packing list"`
	Category   Category `json:"category,omitempty" validate:"omitempty,oneof=general work personal ideas study travel recipes health" example:"travel"`
	Tags       []string `json:"tags,omitempty" validate:"max=10" example:"europe,summer"`
	IsFavorite bool     `json:"is_favorite,omitempty" example:"false"`
	Color      string   `json:"color,omitempty" validate:"omitempty,hexcolor" example:"#FFD700"`
}

// UpdateNoteRequest is a partial update; nil fields are left untouched.
type UpdateNoteRequest struct {
	Title      *string   `json:"title,omitempty" validate:"omitempty,min=1,max=100" example:"Trip to Rome"`
	Content    *string   `json:"content,omitempty" validate:"omitempty,min=1,max=10000" example:"Updated packing list"`
	Category   *Category `json:"category,omitempty" validate:"omitempty,oneof=general work personal ideas study travel recipes health" example:"travel"`
	Tags       *[]string `json:"tags,omitempty" validate:"omitempty,max=10"`
	IsFavorite *bool     `json:"is_favorite,omitempty" example:"true"`
	Color      *string   `json:"color,omitempty" validate:"omitempty,hexcolor" example:"#FF6B6B"`
}

// Empty reports whether the request changes nothing.
func (r UpdateNoteRequest) Empty() bool {
	return r.Title == nil && r.Content == nil && r.Category == nil &&
		r.Tags == nil && r.IsFavorite == nil && r.Color == nil
}

// ListNotesRequest filters and pages a note listing. Its JSON form is the cache key
// parameter, so zero fields are omitted.
type ListNotesRequest struct {
	Search     string   `query:"search" json:"search,omitempty" validate:"omitempty,max=256" example:"paris"`
	Category   Category `query:"category" json:"category,omitempty" validate:"omitempty,oneof=general work personal ideas study travel recipes health" example:"travel"`
	Tags       []string `query:"tags" json:"tags,omitempty" validate:"omitempty,max=10"`
	IsFavorite *bool    `query:"is_favorite" json:"is_favorite,omitempty"`
	Limit      int      `query:"limit" json:"limit,omitempty" validate:"omitempty,min=1,max=100" example:"20"`
	Offset     int      `query:"offset" json:"offset,omitempty" validate:"min=0" example:"0"`
}

// NoteResponse represents a single note response
type NoteResponse struct {
	Note *Note `json:"note"`
}

// ListNotesResponse is one page of notes, newest first.
type ListNotesResponse struct {
	Notes []*Note `json:"notes"`
	Total int64   `json:"total" example:"125"`
}

// DeleteNoteResponse carries the removed note.
type DeleteNoteResponse struct {
	Note *Note `json:"note"`
}

// Counts is what the store reports for the stats view.
type Counts struct {
	Notes      int64
	Favorites  int64
	Categories []Category
}

// Stats is the profile statistics view.
type Stats struct {
	NotesCount            int64      `json:"notes_count" example:"12"`
	FavoriteNotesCount    int64      `json:"favorite_notes_count" example:"3"`
	Categories            []Category `json:"categories"`
	CategoriesCount       int        `json:"categories_count" example:"4"`
	RecentActivitiesCount int64      `json:"recent_activities_count" example:"7"`
}

// Event types published on the Bus.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// NoteEvent represents an event that occurred on a note
type NoteEvent struct {
	Type string `json:"type"`
	Note *Note  `json:"note"`
}
