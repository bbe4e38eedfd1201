package notes

import (
	"bytes"
	"slices"
	"strings"
	"time"

	"note-sync/internal/result"
	util "note-sync/internal/utils"
	"note-sync/internal/utils/sanitize"
)

// PrepareCreate sanitizes req, applies defaults and validates it.
func PrepareCreate(req CreateNoteRequest) (CreateNoteRequest, *result.Error) {
	req.Title = sanitize.Clean(req.Title)
	req.Content = sanitize.Clean(req.Content)
	req.Tags = NormalizeTags(req.Tags)
	if req.Category == "" {
		req.Category = DefaultCategory
	}
	if req.Color == "" {
		req.Color = DefaultColor
	}
	if err := util.Validator().Struct(req); err != nil {
		return req, result.Validation(util.Describe(err), err)
	}
	return req, nil
}

// PrepareUpdate sanitizes the set fields of req and validates it.
func PrepareUpdate(req UpdateNoteRequest) (UpdateNoteRequest, *result.Error) {
	if req.Title != nil {
		v := sanitize.Clean(*req.Title)
		req.Title = &v
	}
	if req.Content != nil {
		v := sanitize.Clean(*req.Content)
		req.Content = &v
	}
	if req.Tags != nil {
		v := NormalizeTags(*req.Tags)
		req.Tags = &v
	}
	if err := util.Validator().Struct(req); err != nil {
		return req, result.Validation(util.Describe(err), err)
	}
	return req, nil
}

// PrepareList normalizes a filter so equal filters produce equal values, then
// validates it.
func PrepareList(req ListNotesRequest) (ListNotesRequest, *result.Error) {
	req.Search = strings.TrimSpace(req.Search)
	req.Tags = NormalizeTags(req.Tags)
	if len(req.Tags) == 0 {
		req.Tags = nil
	}
	if req.Limit == 0 {
		req.Limit = DefaultLimit
	}
	if err := util.Validator().Struct(req); err != nil {
		return req, result.Validation(util.Describe(err), err)
	}
	return req, nil
}

// NormalizeTags trims, drops empties and deduplicates, returning a sorted set.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = sanitize.Line(t); t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Matches reports whether n satisfies filter, ignoring paging. Search is a
// case-insensitive substring match over title, content and every tag.
func Matches(n *Note, filter ListNotesRequest) bool {
	if filter.Category != "" && n.Category != filter.Category {
		return false
	}
	if filter.IsFavorite != nil && n.IsFavorite != *filter.IsFavorite {
		return false
	}
	if len(filter.Tags) > 0 && !slices.ContainsFunc(filter.Tags, func(t string) bool {
		return slices.Contains(n.Tags, t)
	}) {
		return false
	}
	if filter.Search == "" {
		return true
	}

	q := strings.ToLower(filter.Search)
	if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
		return true
	}
	return slices.ContainsFunc(n.Tags, func(t string) bool {
		return strings.Contains(strings.ToLower(t), q)
	})
}

// ApplyPatch returns a copy of n with the set fields of patch merged in and
// UpdatedAt stamped with now.
func ApplyPatch(n *Note, patch UpdateNoteRequest, now time.Time) *Note {
	c := n.Clone()
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Content != nil {
		c.Content = *patch.Content
	}
	if patch.Category != nil {
		c.Category = *patch.Category
	}
	if patch.Tags != nil {
		c.Tags = append([]string{}, *patch.Tags...)
	}
	if patch.IsFavorite != nil {
		c.IsFavorite = *patch.IsFavorite
	}
	if patch.Color != nil {
		c.Color = *patch.Color
	}
	c.UpdatedAt = now
	return c
}

// Newer orders notes by created_at descending with id descending as tie-break.
func Newer(a, b *Note) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return bytes.Compare(b.ID[:], a.ID[:])
}
