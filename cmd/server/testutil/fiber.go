// Package testutil holds request builders shared by the handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"note-sync/cmd/server/handlers/httperr"
	"note-sync/internal/config"
	"note-sync/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// TestJWTSecret signs the tokens of handler tests.
const TestJWTSecret = "test-secret-with-32-plus-characters"

// CreateTestApp initialises a debug logger and returns an app wired to the
// production error handler.
func CreateTestApp(t *testing.T) *fiber.App {
	t.Helper()
	_, err := logger.Init(config.Config{LogLevel: "debug", LogFormat: "text"})
	require.NoError(t, err)
	return fiber.New(fiber.Config{ErrorHandler: httperr.Handler})
}

// CreateTestJWT signs an HS256 token carrying the claims the JWT middleware
// reads. A negative ttl yields an expired token.
func CreateTestJWT(userID, email string, secret []byte, ttl time.Duration) (string, error) {
	issued := time.Now().UTC()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"iat":     issued.Unix(),
		"exp":     issued.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// CreateJSONRequest encodes body, if any, as the request payload.
func CreateJSONRequest(method, url string, body any) *http.Request {
	var payload io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		payload = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, url, payload)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

// CreateAuthenticatedRequest is CreateJSONRequest with a bearer token.
func CreateAuthenticatedRequest(method, url string, body any, token string) *http.Request {
	req := CreateJSONRequest(method, url, body)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

// CreateWebSocketRequest builds an upgrade handshake; token, when set, goes in
// the query string the way browsers send it.
func CreateWebSocketRequest(url string, token *string) *http.Request {
	if token != nil {
		url += "?token=" + *token
	}
	req := httptest.NewRequest(http.MethodGet, url, nil)
	for k, v := range map[string]string{
		"Connection":            "Upgrade",
		"Upgrade":               "websocket",
		"Sec-WebSocket-Version": "13",
		"Sec-WebSocket-Key":     "dGhlIHNhbXBsZSBub25jZQ==",
	} {
		req.Header.Set(k, v)
	}
	return req
}

// DecodeJSON decodes the response body into v and closes it.
func DecodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
