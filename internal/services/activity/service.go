package activity

import (
	"context"
	"log/slog"
	"time"

	"note-sync/internal/result"
	"note-sync/internal/services/auth"
	util "note-sync/internal/utils"
	"note-sync/internal/utils/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service is the activity entity service.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// NewService creates a new activity service
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Create appends an activity for the caller.
func (s *Service) Create(ctx context.Context, req CreateActivityRequest) result.Result[*Activity] {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return result.Fail[*Activity](result.ErrNotAuthenticated)
	}

	req.Title = sanitize.Clean(req.Title)
	req.Description = sanitize.Clean(req.Description)
	if err := util.Validator().Struct(req); err != nil {
		return result.Fail[*Activity](result.Validation(util.Describe(err), err))
	}

	look := AppearanceOf(req.Type)
	a := &Activity{
		ID:          bson.NewObjectID(),
		UserID:      id.UserID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Icon:        firstNonEmpty(req.Icon, look.Icon),
		IconColor:   firstNonEmpty(req.IconColor, look.Color),
		RelatedID:   req.RelatedID,
		CreatedAt:   s.now(),
	}

	if err := s.repo.Create(ctx, a); err != nil {
		s.log.Error(ErrCreateActivity.Error(), "error", err, "user_id", id.UserID.Hex())
		return result.Fail[*Activity](classify(ErrCreateActivity, err))
	}
	return result.Ok(a)
}

// ListRecent returns the caller's newest activities. limit <= 0 means DefaultLimit;
// values above MaxLimit are clamped.
func (s *Service) ListRecent(ctx context.Context, limit int) result.Result[*ListActivitiesResponse] {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return result.Fail[*ListActivitiesResponse](result.ErrNotAuthenticated)
	}

	items, err := s.repo.ListRecent(ctx, id.UserID, ClampLimit(limit))
	if err != nil {
		s.log.Error(ErrListActivities.Error(), "error", err, "user_id", id.UserID.Hex())
		return result.Fail[*ListActivitiesResponse](classify(ErrListActivities, err))
	}
	if items == nil {
		items = []*Activity{}
	}
	return result.Ok(&ListActivitiesResponse{Activities: items})
}

// CountSince counts the caller's activities created at or after since.
func (s *Service) CountSince(ctx context.Context, since time.Time) (int64, error) {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return 0, result.ErrNotAuthenticated
	}
	return s.repo.CountSince(ctx, id.UserID, since)
}

// ClampLimit applies the feed paging bounds.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// classify keeps transport failures as network errors and reports the rest with
// the operation's own message.
func classify(op, err error) *result.Error {
	if e := result.Classify(err); e.Kind == result.KindNetwork {
		return e
	}
	return result.Rejected(op.Error(), err)
}
