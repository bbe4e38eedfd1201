package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"note-sync/cmd/server/ctxkeys"
	"note-sync/cmd/server/handlers/httperr"
	"note-sync/internal/logger"
	"note-sync/internal/services/auth"
	"note-sync/internal/services/notes"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	// WSClosePolicyViolation is sent when the session outlives its budget.
	WSClosePolicyViolation = 1008

	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 25 * time.Second
)

// Hub registers live connections.
type Hub interface {
	Subscribe(userID bson.ObjectID) (*notes.Subscriber, func())
}

// WebSocketHandlers streams note events of the connected user.
type WebSocketHandlers struct {
	hub        Hub
	jwtSecret  string
	maxSession time.Duration
}

// NewWebSocketHandlers creates new WebSocket handlers
func NewWebSocketHandlers(hub Hub, jwtSecret string, maxSessionSec int) *WebSocketHandlers {
	return &WebSocketHandlers{
		hub:        hub,
		jwtSecret:  jwtSecret,
		maxSession: time.Duration(maxSessionSec) * time.Second,
	}
}

// WSUpgrade authenticates the upgrade request with the token query parameter.
func (h *WebSocketHandlers) WSUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return httperr.Fail(httperr.E{
			Status:  fiber.StatusBadRequest,
			Message: "WebSocket upgrade required",
		})
	}

	token := c.Query("token")
	if token == "" {
		logger.L().Warn("missing token in websocket upgrade", "ip", c.IP())
		return httperr.Fail(httperr.E{Status: fiber.StatusUnauthorized, Message: "Missing token"})
	}

	id, err := auth.ParseToken(h.jwtSecret, token)
	if err != nil {
		logger.L().Warn("invalid token in websocket upgrade", "ip", c.IP(), "error", err)
		return httperr.Fail(httperr.E{Status: fiber.StatusUnauthorized, Message: "Invalid token"})
	}

	logger.L().Info("websocket upgrade", "ip", c.IP(), "user_id", id.UserID.Hex())
	c.Locals(ctxkeys.UserIDKey, id.UserID.Hex())
	c.Locals(ctxkeys.UserEmailKey, id.Email)
	c.Locals(ctxkeys.ParentCtxKey, c.UserContext())
	return c.Next()
}

// WSNotesStream forwards hub events to the socket until the client leaves, the
// session expires or the subscriber is closed.
func (h *WebSocketHandlers) WSNotesStream(c *websocket.Conn) {
	userID, err := bson.ObjectIDFromHex(fmt.Sprint(c.Locals(ctxkeys.UserIDKey)))
	if err != nil {
		logger.L().Error("websocket without user", "error", err)
		_ = c.Close()
		return
	}
	parent, ok := c.Locals(ctxkeys.ParentCtxKey).(context.Context)
	if !ok {
		parent = context.Background()
	}

	ctx, cancel := context.WithTimeout(parent, h.maxSession)
	defer cancel()

	sub, unsubscribe := h.hub.Subscribe(userID)
	defer unsubscribe()

	log := logger.L().With("user_id", userID.Hex(), "conn_id", sub.ID.String())
	log.Info("websocket connection established")

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		h.readLoop(c, cancel)
	}()
	h.writeLoop(ctx, c, sub, log)
	<-readDone

	log.Info("websocket connection closed")
}

// readLoop drains client frames so control messages are processed; any read
// error ends the session.
func (h *WebSocketHandlers) readLoop(c *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.L().Debug("websocket read failed", "error", err)
			}
			return
		}
	}
}

func (h *WebSocketHandlers) writeLoop(ctx context.Context, c *websocket.Conn, sub *notes.Subscriber, log *slog.Logger) {
	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()
	defer func() { _ = c.Close() }()

	for {
		select {
		case ev, ok := <-sub.Ch:
			if !ok {
				return
			}
			if err := h.write(c, func() error { return c.WriteJSON(eventMessage(ev)) }); err != nil {
				log.Warn("failed to write websocket message", "error", err)
				return
			}
		case <-ping.C:
			if err := h.write(c, func() error { return c.WriteMessage(websocket.PingMessage, nil) }); err != nil {
				return
			}
		case <-sub.Done:
			return
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				_ = h.write(c, func() error {
					return c.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(WSClosePolicyViolation, "session timeout"))
				})
			}
			return
		}
	}
}

func (h *WebSocketHandlers) write(c *websocket.Conn, fn func() error) error {
	if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return fn()
}

// eventMessage shapes an event for the wire. Deletions carry only the id.
func eventMessage(ev notes.NoteEvent) fiber.Map {
	if ev.Type == notes.EventDeleted && ev.Note != nil {
		return fiber.Map{"type": ev.Type, "note": fiber.Map{"id": ev.Note.ID.Hex()}}
	}
	return fiber.Map{"type": ev.Type, "note": ev.Note}
}
