package notes

import (
	"note-sync/cmd/server/handlers/handlerutil"
	"note-sync/cmd/server/handlers/httperr"
	"note-sync/internal/notesync"
	"note-sync/internal/services/auth"
	"note-sync/internal/services/notes"

	"github.com/gofiber/fiber/v2"
)

// Clients hands out the sync client of a user.
type Clients interface {
	For(id auth.Identity) *notesync.Client
}

// Handlers contains the notes HTTP handlers
type Handlers struct {
	clients Clients
}

// NewHandlers creates new notes handlers
func NewHandlers(clients Clients) *Handlers {
	return &Handlers{clients: clients}
}

func (h *Handlers) client(c *fiber.Ctx) (*notesync.Client, error) {
	id, err := handlerutil.Identity(c)
	if err != nil {
		return nil, err
	}
	return h.clients.For(id), nil
}

// Create handles note creation
// @Summary Create a new note
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body notes.CreateNoteRequest true "Create note request"
// @Success 201 {object} notes.NoteResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 503 {object} httperr.E
// @Router /notes [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	cli, err := h.client(c)
	if err != nil {
		return err
	}

	var req notes.CreateNoteRequest
	if err := handlerutil.ParseBody(c, &req, "Create"); err != nil {
		return err
	}

	return httperr.Respond(c, fiber.StatusCreated, cli.CreateNote(c.UserContext(), req))
}

// List handles notes listing
// @Summary List notes, newest first
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param search query string false "Case-insensitive substring of title, content or a tag"
// @Param category query string false "Category filter"
// @Param tags query []string false "Notes carrying any of these tags" collectionFormat(multi)
// @Param is_favorite query bool false "Favorite filter"
// @Param limit query int false "Limit (default: 20, max: 100)" minimum(1) maximum(100)
// @Param offset query int false "Offset" minimum(0)
// @Success 200 {object} notes.ListNotesResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /notes [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	cli, err := h.client(c)
	if err != nil {
		return err
	}

	var req notes.ListNotesRequest
	if err := handlerutil.ParseQuery(c, &req, "List"); err != nil {
		return err
	}

	return httperr.Respond(c, fiber.StatusOK, cli.Notes(c.UserContext(), req))
}

// Get returns a single note
// @Summary Get a note
// @Tags notes
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 200 {object} notes.NoteResponse
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	cli, err := h.client(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.NoteID(c, "Get")
	if err != nil {
		return err
	}

	return httperr.Respond(c, fiber.StatusOK, cli.Note(c.UserContext(), noteID))
}

// Update handles note updates
// @Summary Update a note
// @Description Partial update; omitted fields are left untouched.
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Param request body notes.UpdateNoteRequest true "Update note request"
// @Success 200 {object} notes.NoteResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [patch]
func (h *Handlers) Update(c *fiber.Ctx) error {
	cli, err := h.client(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.NoteID(c, "Update")
	if err != nil {
		return err
	}

	var req notes.UpdateNoteRequest
	if err := handlerutil.ParseBody(c, &req, "Update"); err != nil {
		return err
	}

	return httperr.Respond(c, fiber.StatusOK, cli.UpdateNote(c.UserContext(), noteID, req))
}

// Delete handles note deletion
// @Summary Delete a note
// @Tags notes
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 200 {object} notes.DeleteNoteResponse
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	cli, err := h.client(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.NoteID(c, "Delete")
	if err != nil {
		return err
	}

	return httperr.Respond(c, fiber.StatusOK, cli.DeleteNote(c.UserContext(), noteID))
}

// Stats returns the profile statistics of the current user
// @Summary Note statistics
// @Tags notes
// @Produce json
// @Security Bearer
// @Success 200 {object} notes.Stats
// @Failure 401 {object} httperr.E
// @Router /stats [get]
func (h *Handlers) Stats(c *fiber.Ctx) error {
	cli, err := h.client(c)
	if err != nil {
		return err
	}
	return httperr.Respond(c, fiber.StatusOK, cli.Stats(c.UserContext()))
}

// Categories returns the category catalogue
// @Summary List categories
// @Tags notes
// @Produce json
// @Success 200 {array} notes.CategoryInfo
// @Router /categories [get]
func Categories(c *fiber.Ctx) error {
	return c.JSON(notes.Categories())
}
