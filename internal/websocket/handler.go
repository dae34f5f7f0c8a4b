package websocket

import (
	"context"
	"strconv"
	"strings"
	"time"

	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/repository/unitofwork"
	"support-chat-be/internal/service"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Application close codes sent when a handshake is rejected after upgrade.
const (
	CloseMissingCredential = 4001
	CloseInvalidCredential = 4002
	CloseInactiveIdentity  = 4003
	CloseRoomNotFound      = 4004
	CloseForbidden         = 4005
)

// Gateway validates an upgraded connection and hands it to the hub. Auth and
// room checks happen post-upgrade so rejections reach the client as proper
// close codes instead of opaque HTTP failures.
type Gateway struct {
	hub        *Hub
	uowFactory unitofwork.RepositoryFactory
	messages   service.IChatMessageService
	logger     logger.ILogger
}

func NewGateway(hub *Hub, uowFactory unitofwork.RepositoryFactory, messages service.IChatMessageService, log logger.ILogger) *Gateway {
	return &Gateway{
		hub:        hub,
		uowFactory: uowFactory,
		messages:   messages,
		logger:     log,
	}
}

func (g *Gateway) Serve(conn *websocket.Conn) {
	token := conn.Query("token")
	if token == "" {
		header := conn.Headers("Authorization")
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		g.reject(conn, CloseMissingCredential, "credential required")
		return
	}

	userIDStr, err := serverutils.ParseUserToken(token)
	if err != nil {
		g.reject(conn, CloseInvalidCredential, "invalid credential")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		g.reject(conn, CloseInvalidCredential, "invalid credential")
		return
	}

	roomID, err := strconv.ParseInt(conn.Params("roomId"), 10, 64)
	if err != nil {
		g.reject(conn, CloseRoomNotFound, "room not found")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	uow := g.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindById(ctx, userID)
	if err != nil || user == nil {
		g.reject(conn, CloseInvalidCredential, "invalid credential")
		return
	}
	if !user.IsActive() {
		g.reject(conn, CloseInactiveIdentity, "account is not active")
		return
	}

	room, err := uow.ChatRoomRepository().FindById(ctx, roomID)
	if err != nil {
		g.reject(conn, CloseRoomNotFound, "room not found")
		return
	}
	if room == nil {
		g.reject(conn, CloseRoomNotFound, "room not found")
		return
	}
	if !room.HasParticipant(userID) && !user.IsStaff() {
		g.reject(conn, CloseForbidden, "not a participant of this room")
		return
	}

	client := &Client{
		Hub:      g.hub,
		Conn:     conn,
		UserID:   userID,
		RoomID:   roomID,
		Send:     make(chan []byte, 256),
		messages: g.messages,
	}
	g.hub.register <- client

	go client.writePump()
	client.readPump()
}

func (g *Gateway) reject(conn *websocket.Conn, code int, reason string) {
	g.logger.Warn("Gateway", "Handshake rejected", map[string]interface{}{
		"code":   code,
		"reason": reason,
	})
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	conn.Close()
}
