package activities

import (
	"note-sync/cmd/server/handlers/handlerutil"
	"note-sync/cmd/server/handlers/httperr"
	"note-sync/internal/notesync"
	"note-sync/internal/services/auth"

	"github.com/gofiber/fiber/v2"
)

// Clients hands out the sync client of a user.
type Clients interface {
	For(id auth.Identity) *notesync.Client
}

// Handlers serves the activity feed.
type Handlers struct {
	clients Clients
}

func NewHandlers(clients Clients) *Handlers {
	return &Handlers{clients: clients}
}

// List returns the most recent activities of the current user
// @Summary Recent activities
// @Tags activities
// @Produce json
// @Security Bearer
// @Param limit query int false "Limit (default: 10, max: 50)"
// @Success 200 {object} activity.ListActivitiesResponse
// @Failure 401 {object} httperr.E
// @Router /activities [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	id, err := handlerutil.Identity(c)
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 0)
	return httperr.Respond(c, fiber.StatusOK, h.clients.For(id).Activities(c.UserContext(), limit))
}
