package auth

import (
	"context"

	"note-sync/cmd/server/handlers/handlerutil"
	"note-sync/cmd/server/handlers/httperr"
	"note-sync/internal/logger"
	"note-sync/internal/services/auth"
	util "note-sync/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthService issues tokens for new and returning users.
type AuthService interface {
	SignUp(ctx context.Context, req auth.SignUpRequest) (*auth.AuthResponse, error)
	SignIn(ctx context.Context, req auth.SignInRequest) (*auth.AuthResponse, error)
}

// Sessions drops the cached state of a user.
type Sessions interface {
	Forget(id auth.Identity)
}

type Handlers struct {
	svc      AuthService
	sessions Sessions
}

func NewHandlers(svc AuthService, sessions Sessions) *Handlers {
	return &Handlers{svc: svc, sessions: sessions}
}

// decodeValid parses the body into T and runs struct validation on it.
func decodeValid[T any](c *fiber.Ctx, handler string) (T, error) {
	var req T
	if err := handlerutil.ParseBody(c, &req, handler); err != nil {
		return req, err
	}
	if err := util.Validator().Struct(req); err != nil {
		logger.L().Warn("request validation failed", "handler", handler, "error", err)
		return req, httperr.InvalidInput(util.Describe(err))
	}
	return req, nil
}

// SignUp registers a user and returns a token for it
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.SignUpRequest true "Sign up request"
// @Success 201 {object} auth.AuthResponse
// @Failure 400 {object} httperr.E
// @Failure 429 {object} httperr.E
// @Router /auth/sign-up [post]
func (h *Handlers) SignUp(c *fiber.Ctx) error {
	req, err := decodeValid[auth.SignUpRequest](c, "SignUp")
	if err != nil {
		return err
	}

	resp, err := h.svc.SignUp(c.UserContext(), req)
	if err != nil {
		logger.L().Warn("sign-up rejected", "error", err)
		return httperr.Fail(httperr.E{Status: fiber.StatusBadRequest, Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// SignIn exchanges credentials for a token
// @Summary Authenticate a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.SignInRequest true "Sign in request"
// @Success 200 {object} auth.AuthResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 429 {object} httperr.E
// @Router /auth/sign-in [post]
func (h *Handlers) SignIn(c *fiber.Ctx) error {
	req, err := decodeValid[auth.SignInRequest](c, "SignIn")
	if err != nil {
		return err
	}

	resp, err := h.svc.SignIn(c.UserContext(), req)
	if err != nil {
		return httperr.Fail(httperr.E{
			Status:  fiber.StatusUnauthorized,
			Kind:    httperr.ErrUnauthorized.Kind,
			Message: err.Error(),
		})
	}
	return c.JSON(resp)
}

// SignOut drops the cached notes state of the current user
// @Summary Sign out
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]string
// @Failure 401 {object} httperr.E
// @Router /auth/sign-out [post]
func (h *Handlers) SignOut(c *fiber.Ctx) error {
	id, err := handlerutil.Identity(c)
	if err != nil {
		return err
	}

	h.sessions.Forget(id)
	logger.L().Info("signed out", "user_id", id.UserID.Hex())
	return c.JSON(fiber.Map{"message": "Successfully signed out"})
}
