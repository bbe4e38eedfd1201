package middlewares

import (
	"note-sync/cmd/server/ctxkeys"
	"note-sync/cmd/server/handlers/httperr"
	"note-sync/internal/logger"
	"note-sync/internal/services/auth"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWT guards a route group with Bearer HS256 tokens. Accepted requests carry
// the caller's identity both in Locals and in the user context; everything
// else ends in a 401 through the global error handler.
func JWT(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(secret)},
		SuccessHandler: attachIdentity,
		ErrorHandler: func(_ *fiber.Ctx, err error) error {
			return reject(err)
		},
	})
}

func attachIdentity(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return reject(auth.ErrInvalidTokenMissingUserID)
	}
	claims, _ := token.Claims.(jwt.MapClaims)

	id, err := auth.IdentityFromClaims(claims)
	if err != nil {
		return reject(err)
	}

	c.Locals(ctxkeys.UserIDKey, id.UserID.Hex())
	c.Locals(ctxkeys.UserEmailKey, id.Email)
	c.SetUserContext(auth.WithIdentity(c.UserContext(), id))
	return c.Next()
}

func reject(err error) error {
	logger.L().Debug("rejected token", "error", auth.ErrUnauthorized(err))
	return httperr.Fail(httperr.ErrUnauthorized)
}
