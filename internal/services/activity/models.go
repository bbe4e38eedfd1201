package activity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Type names what happened.
type Type string

const (
	TypeNoteCreated Type = "note_created"
	TypeNoteUpdated Type = "note_updated"
	TypeNoteDeleted Type = "note_deleted"
	TypeNoteShared  Type = "note_shared"
	TypeUserAction  Type = "user_action"
)

// Appearance is the default icon and colour rendered for a Type.
type Appearance struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var appearances = map[Type]Appearance{
	TypeNoteCreated: {Icon: "plus-circle", Color: "bg-green-500"},
	TypeNoteUpdated: {Icon: "edit", Color: "bg-orange-500"},
	TypeNoteDeleted: {Icon: "trash-2", Color: "bg-red-500"},
	TypeNoteShared:  {Icon: "share", Color: "bg-blue-500"},
	TypeUserAction:  {Icon: "activity", Color: "bg-gray-500"},
}

// AppearanceOf returns the defaults for t; unknown types fall back to user_action.
func AppearanceOf(t Type) Appearance {
	if a, ok := appearances[t]; ok {
		return a
	}
	return appearances[TypeUserAction]
}

const (
	TitleMaxLength       = 255
	DescriptionMaxLength = 500
	DefaultLimit         = 10
	MaxLimit             = 50
)

// Activity is an append-only feed entry.
type Activity struct {
	ID          bson.ObjectID  `bson:"_id,omitempty" json:"id" example:"683cdb8aa96ad71e8e075bd3"`
	UserID      bson.ObjectID  `bson:"user_id" json:"user_id" example:"683cdb8aa96ad71e8e075bd0"`
	Title       string         `bson:"title" json:"title" example:"Created note: Trip to Paris"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	Type        Type           `bson:"type" json:"type" example:"note_created"`
	Icon        string         `bson:"icon" json:"icon" example:"plus-circle"`
	IconColor   string         `bson:"icon_color" json:"icon_color" example:"bg-green-500"`
	RelatedID   *bson.ObjectID `bson:"related_id,omitempty" json:"related_id,omitempty" swaggertype:"string"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at" example:"2025-06-01T23:00:26.005703677Z"`
}

// CreateActivityRequest describes a new feed entry. Icon and IconColor default from Type.
type CreateActivityRequest struct {
	Title       string         `json:"title" validate:"required,max=255"`
	Description string         `json:"description,omitempty" validate:"max=500"`
	Type        Type           `json:"type" validate:"required,oneof=note_created note_updated note_deleted note_shared user_action"`
	Icon        string         `json:"icon,omitempty"`
	IconColor   string         `json:"icon_color,omitempty"`
	RelatedID   *bson.ObjectID `json:"related_id,omitempty" swaggertype:"string"`
}

// ListActivitiesResponse is the activity feed page.
type ListActivitiesResponse struct {
	Activities []*Activity `json:"activities"`
}
