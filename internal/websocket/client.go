package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/service"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	actionSend     = "send"
	actionMarkRead = "mark_read"
	actionTyping   = "typing"
)

// inboundFrame is what a connected client may send upstream.
type inboundFrame struct {
	Action   string `json:"action"`
	Text     string `json:"text"`
	IsTyping bool   `json:"is_typing"`
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	UserID uuid.UUID
	RoomID int64

	// Buffered channel of outbound events.
	Send chan []byte

	messages service.IChatMessageService
}

// readPump pumps inbound frames from the connection into the chat services.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{
					"user_id": c.UserID,
					"error":   err.Error(),
				})
			}
			break
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.sendError("invalid frame")
			continue
		}
		c.handleFrame(frame)

		// Any inbound traffic proves liveness.
		c.Hub.presence.MarkOnline(c.UserID)
	}
}

func (c *Client) handleFrame(frame inboundFrame) {
	ctx := context.Background()

	switch frame.Action {
	case actionSend:
		if strings.TrimSpace(frame.Text) == "" {
			c.sendError("message text is required")
			return
		}
		req := &dto.SendMessageRequest{Room: c.RoomID, Text: frame.Text}
		if _, err := c.messages.Send(ctx, c.UserID, req, nil); err != nil {
			c.reportServiceError(err)
		}

	case actionMarkRead:
		if err := c.messages.MarkAllRead(ctx, c.UserID, c.RoomID); err != nil {
			c.reportServiceError(err)
		}

	case actionTyping:
		// Ephemeral; never persisted, never echoed back to the typist.
		c.Hub.BroadcastToRoom(ctx, dto.ChatEvent{
			Type:     dto.EventTyping,
			RoomId:   c.RoomID,
			UserId:   c.UserID,
			IsTyping: frame.IsTyping,
		})

	default:
		c.sendError("unknown action")
	}
}

func (c *Client) reportServiceError(err error) {
	var appErr *serverutils.AppError
	if errors.As(err, &appErr) {
		c.sendError(appErr.Message)
		return
	}
	c.Hub.logger.Error("Client", "Action failed", map[string]interface{}{
		"user_id": c.UserID,
		"room_id": c.RoomID,
		"error":   err.Error(),
	})
	c.sendError("internal error")
}

// sendError delivers an error event to this connection only.
func (c *Client) sendError(message string) {
	data, err := json.Marshal(dto.ChatEvent{
		Type:   dto.EventError,
		RoomId: c.RoomID,
		Error:  message,
	})
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

// writePump pumps events from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
