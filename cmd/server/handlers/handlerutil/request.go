package handlerutil

import (
	"note-sync/cmd/server/ctxkeys"
	"note-sync/cmd/server/handlers/httperr"
	"note-sync/internal/logger"
	"note-sync/internal/services/auth"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Identity returns the authenticated user stored by the JWT middleware.
func Identity(c *fiber.Ctx) (auth.Identity, error) {
	userIDStr, ok := c.Locals(ctxkeys.UserIDKey).(string)
	if !ok {
		logger.L().Error("user ID not found in context", "handler", "Identity", "path", c.Path())
		return auth.Identity{}, httperr.Fail(httperr.ErrUserNotAuthenticated)
	}

	userID, err := bson.ObjectIDFromHex(userIDStr)
	if err != nil || userID.IsZero() {
		logger.L().Error("invalid user ID", "handler", "Identity", "userIDStr", userIDStr, "path", c.Path(), "error", err)
		return auth.Identity{}, httperr.Fail(httperr.ErrUnauthorized)
	}

	email, _ := c.Locals(ctxkeys.UserEmailKey).(string)
	return auth.Identity{UserID: userID, Email: email}, nil
}

// ParseBody decodes the JSON body into req. Field validation is left to the services.
func ParseBody(c *fiber.Ctx, req any, handlerName string) error {
	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "path", c.Path(), "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}
	return nil
}

// ParseQuery decodes query parameters into req.
func ParseQuery(c *fiber.Ctx, req any, handlerName string) error {
	if err := c.QueryParser(req); err != nil {
		logger.L().Warn("failed to parse query params", "handler", handlerName, "path", c.Path(), "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}
	return nil
}

// NoteID extracts the note ID path parameter. Malformed ids are reported as not found.
func NoteID(c *fiber.Ctx, handlerName string) (bson.ObjectID, error) {
	noteIDStr := c.Params("id")
	noteID, err := bson.ObjectIDFromHex(noteIDStr)
	if err != nil {
		logger.L().Info("invalid note ID parameter", "handler", handlerName, "noteIDStr", noteIDStr, "error", err)
		return bson.ObjectID{}, httperr.Fail(httperr.E{
			Status:  fiber.StatusNotFound,
			Kind:    httperr.ErrNotFound.Kind,
			Message: "note not found",
		})
	}
	return noteID, nil
}
