package notes

import "errors"

var (
	// ErrNoteNotFound is returned by repositories when no note of the user matches.
	ErrNoteNotFound = errors.New("note not found")

	ErrCreateNote = errors.New("failed to create note")
	ErrGetNote    = errors.New("failed to get note")
	ErrListNotes  = errors.New("failed to list notes")
	ErrUpdateNote = errors.New("failed to update note")
	ErrDeleteNote = errors.New("failed to delete note")
	ErrStats      = errors.New("failed to get user statistics")

	// ErrCreateNotesRepo is returned when the notes repository cannot be set up.
	ErrCreateNotesRepo = errors.New("failed to create notes repository")
)
