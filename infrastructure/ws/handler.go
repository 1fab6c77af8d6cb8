package ws

import (
	"context"
	"log/slog"

	"social-chat/auth"
	"social-chat/contract"
	"social-chat/domain/chat"
	"social-chat/errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ActionSubmitter queues an action for the workers without blocking the read loop.
type ActionSubmitter interface {
	Submit(job contract.Job) error
}

// ChannelResolver lists the group channels a user listens on.
type ChannelResolver interface {
	ChannelsOf(userID chat.UserID) ([]chat.ChannelID, error)
}

type Handler struct {
	registry  contract.IRegistry
	submitter ActionSubmitter
	channels  ChannelResolver
	upgrader  websocket.Upgrader
	config    Config
	log       *slog.Logger
}

func NewHandler(registry contract.IRegistry, submitter ActionSubmitter, channels ChannelResolver,
	config Config, log *slog.Logger) *Handler {
	config = config.withDefaults()
	origins := NewOriginPolicy(config.AllowedOrigins, log)
	return &Handler{
		registry:  registry,
		submitter: submitter,
		channels:  channels,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.Check,
		},
		config: config,
		log:    log,
	}
}

// Serve upgrades an authenticated request and blocks for the lifetime of the connection.
// The registry binding is always released when the connection ends, whatever the cause;
// actions already queued still run to completion.
func (h *Handler) Serve(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		status := errors.HTTPStatus(errors.ErrMissingToken)
		c.AbortWithStatusJSON(status, gin.H{"status": status, "error": errors.ErrMissingToken.Error()})
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader already answered the client
		h.log.Warn("Websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	conn := newConnection(ws, userID, h.config, h.log)
	defer conn.Close()
	go conn.writePump()

	if err := h.registry.Bind(conn, userID); err != nil {
		conn.log.Error("Unable to bind connection", "error", err)
		return
	}
	defer h.registry.Unbind(conn.ID())

	// Group subscriptions are rebuilt from storage on every connect
	channels, err := h.channels.ChannelsOf(userID)
	if err != nil {
		conn.log.Error("Unable to restore group subscriptions", "error", err)
	}
	for _, channel := range channels {
		if err := h.registry.Subscribe(conn.ID(), channel); err != nil {
			conn.log.Warn("Unable to subscribe", "channel", channel, "error", err)
		}
	}
	conn.log.Info("Connection opened", "groups", len(channels))

	conn.readPump(
		func(action chat.Action) {
			job := contract.Job{Conn: conn, UserID: userID, Action: action}
			if err := h.submitter.Submit(job); err != nil {
				conn.log.Warn("Action rejected", "action", action.Event(), "error", err)
				h.reply(conn, action.Event(), err)
			}
		},
		func(err error) { h.reply(conn, "", err) },
	)
	conn.log.Info("Connection closed")
}

func (h *Handler) reply(conn *Connection, event chat.Event, err error) {
	if !h.config.ReplyErrors {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.config.WriteWait)
	defer cancel()
	notification := chat.Notification{
		Event: chat.EventError,
		Payload: chat.ActionError{
			Action: event,
			Kind:   string(errors.KindOf(err)),
			Reason: err.Error(),
		},
	}
	if err := conn.Consume(ctx, notification); err != nil {
		conn.log.Debug("Unable to reply with error", "error", err)
	}
}
