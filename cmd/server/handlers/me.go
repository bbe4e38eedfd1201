package handlers

import (
	"note-sync/cmd/server/handlers/handlerutil"

	"github.com/gofiber/fiber/v2"
)

// Me returns the current user information.
// @Summary Get current user
// @Description Get current user information
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]string
// @Router /me [get]
func Me(c *fiber.Ctx) error {
	id, err := handlerutil.Identity(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"uid":   id.UserID.Hex(),
		"email": id.Email,
	})
}
