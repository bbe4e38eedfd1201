package httperr

import (
	"errors"

	"note-sync/internal/result"
	"note-sync/internal/services/notes"

	"github.com/gofiber/fiber/v2"
)

// E represents an HTTP error with status code and message
type E struct {
	Status  int         `json:"-" example:"400"`
	Kind    result.Kind `json:"kind,omitempty" example:"validation"`
	Message string      `json:"error" example:"Bad Request"`
}

// Error implements the error interface
func (e E) Error() string {
	return e.Message
}

// JSON returns the error as JSON response
func (e E) JSON(c *fiber.Ctx) error {
	return c.Status(e.Status).JSON(e)
}

// Fail returns the error for Fiber's global error handler to process
func Fail(err E) error {
	return err
}

// InvalidInput wraps a validation error and returns the standard response.
func InvalidInput(msg string) error {
	return Fail(E{
		Status:  fiber.StatusBadRequest,
		Kind:    result.KindValidation,
		Message: msg,
	})
}

// InternalError returns an internal server error with the given message
func InternalError(message string) E {
	return E{Status: fiber.StatusInternalServerError, Message: message}
}

// Pre-defined HTTP errors
var (
	ErrBadRequest           = E{Status: 400, Message: "Bad Request"}
	ErrUnauthorized         = E{Status: 401, Kind: result.KindNotAuthenticated, Message: "Unauthorized"}
	ErrUserNotAuthenticated = E{Status: 401, Kind: result.KindNotAuthenticated, Message: "User not authenticated"}
	ErrNotFound             = E{Status: 404, Kind: result.KindRejected, Message: "Not Found"}
	ErrTooManyRequests      = E{Status: 429, Message: "Too Many Requests"}
	ErrInternal             = InternalError("Internal Server Error")
)

// Status maps a failure kind to its HTTP status. Not-found rejections are 404.
func Status(e *result.Error) int {
	switch e.Kind {
	case result.KindValidation:
		return fiber.StatusBadRequest
	case result.KindNotAuthenticated:
		return fiber.StatusUnauthorized
	case result.KindRejected:
		if errors.Is(e, notes.ErrNoteNotFound) {
			return fiber.StatusNotFound
		}
		return fiber.StatusUnprocessableEntity
	case result.KindNetwork:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// FromResult converts a classified failure into an HTTP error.
func FromResult(e *result.Error) E {
	return E{Status: Status(e), Kind: e.Kind, Message: e.Message}
}

// Respond writes the value of r with status on success and the mapped error otherwise.
func Respond[T any](c *fiber.Ctx, status int, r result.Result[T]) error {
	if r.Error != nil {
		return Fail(FromResult(r.Error))
	}
	return c.Status(status).JSON(r.Data)
}

// Handler is the global error handler for Fiber
func Handler(c *fiber.Ctx, err error) error {
	var e E
	if errors.As(err, &e) {
		return e.JSON(c)
	}

	var re *result.Error
	if errors.As(err, &re) {
		return FromResult(re).JSON(c)
	}

	var fiberError *fiber.Error
	if errors.As(err, &fiberError) {
		return c.Status(fiberError.Code).JSON(E{
			Status:  fiberError.Code,
			Message: fiberError.Message,
		})
	}

	return ErrInternal.JSON(c)
}
