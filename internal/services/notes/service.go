package notes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"note-sync/internal/result"
	"note-sync/internal/services/activity"
	"note-sync/internal/services/auth"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RecentWindow is the look-back of Stats.RecentActivitiesCount.
const RecentWindow = 7 * 24 * time.Hour

// ActivityLog receives the side-effect entries of note mutations.
type ActivityLog interface {
	Create(ctx context.Context, req activity.CreateActivityRequest) result.Result[*activity.Activity]
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// Service is the note entity service. Each operation makes one store round trip
// for the note itself and returns a Result envelope; nothing panics out.
type Service struct {
	repo       Repository
	activities ActivityLog
	bus        Bus
	log        *slog.Logger
	now        func() time.Time
}

// NewService creates a new notes service. activities and bus may be nil.
func NewService(repo Repository, activities ActivityLog, bus Bus, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		activities: activities,
		bus:        bus,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create creates a new note
func (s *Service) Create(ctx context.Context, req CreateNoteRequest) result.Result[*NoteResponse] {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return result.Fail[*NoteResponse](result.ErrNotAuthenticated)
	}
	req, verr := PrepareCreate(req)
	if verr != nil {
		return result.Fail[*NoteResponse](verr)
	}

	now := s.now()
	note := &Note{
		ID:         bson.NewObjectID(),
		UserID:     id.UserID,
		Title:      req.Title,
		Content:    req.Content,
		Category:   req.Category,
		Tags:       req.Tags,
		IsFavorite: req.IsFavorite,
		Color:      req.Color,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		s.log.Error(ErrCreateNote.Error(), "error", err, "user_id", id.UserID.Hex())
		return result.Fail[*NoteResponse](s.classify(ErrCreateNote, err))
	}

	s.record(ctx, activity.TypeNoteCreated, "Created note: "+note.Title, note.ID)
	s.publish(ctx, EventCreated, note)

	return result.Ok(&NoteResponse{Note: note})
}

// Get returns one note of the caller.
func (s *Service) Get(ctx context.Context, noteID bson.ObjectID) result.Result[*NoteResponse] {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return result.Fail[*NoteResponse](result.ErrNotAuthenticated)
	}

	note, err := s.repo.FindByID(ctx, id.UserID, noteID)
	if err != nil {
		s.logFailure(ErrGetNote, err, id.UserID, noteID)
		return result.Fail[*NoteResponse](s.classify(ErrGetNote, err))
	}
	return result.Ok(&NoteResponse{Note: note})
}

// List returns one page of the caller's notes matching req, newest first.
func (s *Service) List(ctx context.Context, req ListNotesRequest) result.Result[*ListNotesResponse] {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return result.Fail[*ListNotesResponse](result.ErrNotAuthenticated)
	}
	req, verr := PrepareList(req)
	if verr != nil {
		return result.Fail[*ListNotesResponse](verr)
	}

	items, total, err := s.repo.List(ctx, id.UserID, req)
	if err != nil {
		s.log.Error(ErrListNotes.Error(), "error", err, "user_id", id.UserID.Hex())
		return result.Fail[*ListNotesResponse](s.classify(ErrListNotes, err))
	}
	if items == nil {
		items = []*Note{}
	}
	return result.Ok(&ListNotesResponse{Notes: items, Total: total})
}

// Update applies a partial update to a note of the caller.
func (s *Service) Update(ctx context.Context, noteID bson.ObjectID, req UpdateNoteRequest) result.Result[*NoteResponse] {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return result.Fail[*NoteResponse](result.ErrNotAuthenticated)
	}
	req, verr := PrepareUpdate(req)
	if verr != nil {
		return result.Fail[*NoteResponse](verr)
	}

	note, err := s.repo.Update(ctx, id.UserID, noteID, req)
	if err != nil {
		s.logFailure(ErrUpdateNote, err, id.UserID, noteID)
		return result.Fail[*NoteResponse](s.classify(ErrUpdateNote, err))
	}

	s.record(ctx, activity.TypeNoteUpdated, "Updated note: "+note.Title, note.ID)
	s.publish(ctx, EventUpdated, note)

	return result.Ok(&NoteResponse{Note: note})
}

// Delete permanently removes a note of the caller.
func (s *Service) Delete(ctx context.Context, noteID bson.ObjectID) result.Result[*DeleteNoteResponse] {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return result.Fail[*DeleteNoteResponse](result.ErrNotAuthenticated)
	}

	note, err := s.repo.Delete(ctx, id.UserID, noteID)
	if err != nil {
		s.logFailure(ErrDeleteNote, err, id.UserID, noteID)
		return result.Fail[*DeleteNoteResponse](s.classify(ErrDeleteNote, err))
	}

	s.record(ctx, activity.TypeNoteDeleted, "Deleted note: "+note.Title, note.ID)
	s.publish(ctx, EventDeleted, note)

	return result.Ok(&DeleteNoteResponse{Note: note})
}

// Stats summarises the caller's notes and recent activity. A failure to count
// activities is logged and reported as zero.
func (s *Service) Stats(ctx context.Context) result.Result[*Stats] {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return result.Fail[*Stats](result.ErrNotAuthenticated)
	}

	counts, err := s.repo.Counts(ctx, id.UserID)
	if err != nil {
		s.log.Error(ErrStats.Error(), "error", err, "user_id", id.UserID.Hex())
		return result.Fail[*Stats](s.classify(ErrStats, err))
	}
	if counts.Categories == nil {
		counts.Categories = []Category{}
	}

	stats := &Stats{
		NotesCount:         counts.Notes,
		FavoriteNotesCount: counts.Favorites,
		Categories:         counts.Categories,
		CategoriesCount:    len(counts.Categories),
	}
	if s.activities != nil {
		recent, err := s.activities.CountSince(ctx, s.now().Add(-RecentWindow))
		if err != nil {
			s.log.Warn("failed to count recent activities", "error", err, "user_id", id.UserID.Hex())
		}
		stats.RecentActivitiesCount = recent
	}
	return result.Ok(stats)
}

// record appends the activity entry of a successful mutation. Failures are logged
// and never change the outcome of the mutation.
func (s *Service) record(ctx context.Context, typ activity.Type, title string, noteID bson.ObjectID) {
	if s.activities == nil {
		return
	}
	if len([]rune(title)) > activity.TitleMaxLength {
		title = string([]rune(title)[:activity.TitleMaxLength])
	}
	res := s.activities.Create(ctx, activity.CreateActivityRequest{
		Title:     title,
		Type:      typ,
		RelatedID: &noteID,
	})
	if !res.OK() {
		s.log.Warn("failed to record activity", "error", res.Error, "type", typ, "note_id", noteID.Hex())
	}
}

func (s *Service) publish(ctx context.Context, typ string, n *Note) {
	if s.bus == nil {
		return
	}
	s.bus.Broadcast(ctx, NoteEvent{Type: typ, Note: n})
}

func (s *Service) logFailure(op, err error, userID, noteID bson.ObjectID) {
	if errors.Is(err, ErrNoteNotFound) {
		s.log.Info(op.Error()+": not found", "user_id", userID.Hex(), "note_id", noteID.Hex())
		return
	}
	s.log.Error(op.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
}

// classify maps store errors onto the result taxonomy: transport failures stay
// network errors, a missing note keeps its own message, everything else is
// reported with the operation's message.
func (s *Service) classify(op, err error) *result.Error {
	if e := result.Classify(err); e.Kind == result.KindNetwork {
		return e
	}
	if errors.Is(err, ErrNoteNotFound) {
		return result.Rejected(ErrNoteNotFound.Error(), err)
	}
	return result.Rejected(op.Error(), err)
}
