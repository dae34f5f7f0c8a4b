package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// fabricChannel is the Redis pub/sub channel every instance listens on.
const fabricChannel = "chat:events"

// Hub tracks the open connections per room and fans chat events out to them.
// With Redis available, events go through pub/sub so peers deliver them too;
// without it, delivery degrades to this instance only.
type Hub struct {
	// Registered clients per room.
	rooms map[int64]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb      *redis.Client
	presence *memory.PresenceRepository
	logger   logger.ILogger

	// presenceEvents gates the online/offline publishes. Membership and
	// delivery are unaffected.
	presenceEvents bool
}

func NewHub(rdb *redis.Client, presence *memory.PresenceRepository, presenceEvents bool, log logger.ILogger) *Hub {
	return &Hub{
		rooms:          make(map[int64]map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		rdb:            rdb,
		presence:       presence,
		logger:         log,
		presenceEvents: presenceEvents,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	if h.rooms[client.RoomID] == nil {
		h.rooms[client.RoomID] = make(map[*Client]bool)
	}
	h.rooms[client.RoomID][client] = true
	h.mu.Unlock()

	h.presence.MarkOnline(client.UserID)
	h.logger.Info("Hub", "Client joined room", map[string]interface{}{
		"user_id": client.UserID,
		"room_id": client.RoomID,
	})
	if h.presenceEvents {
		h.BroadcastToRoom(context.Background(), dto.ChatEvent{
			Type:   dto.EventOnline,
			RoomId: client.RoomID,
			UserId: client.UserID,
		})
	}
}

// handleUnregister is idempotent: eviction and the read pump's deferred
// teardown may both hand in the same client, and only the first removal
// may touch presence or publish offline.
func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	clients, ok := h.rooms[client.RoomID]
	if !ok || !clients[client] {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.rooms, client.RoomID)
	}
	lastConnection := !h.hasClientLocked(client.UserID)
	h.mu.Unlock()

	if lastConnection {
		h.presence.MarkOffline(client.UserID)
	}
	h.logger.Info("Hub", "Client left room", map[string]interface{}{
		"user_id": client.UserID,
		"room_id": client.RoomID,
	})
	if h.presenceEvents {
		h.BroadcastToRoom(context.Background(), dto.ChatEvent{
			Type:   dto.EventOffline,
			RoomId: client.RoomID,
			UserId: client.UserID,
		})
	}
}

// hasClientLocked reports whether the user still has a connection in any room.
// Callers must hold mu.
func (h *Hub) hasClientLocked(userID uuid.UUID) bool {
	for _, clients := range h.rooms {
		for client := range clients {
			if client.UserID == userID {
				return true
			}
		}
	}
	return false
}

// BroadcastToRoom implements service.EventBroadcaster. With Redis wired, the
// event only goes onto the fabric; this instance receives its own publish
// through the subscription, so delivery happens exactly once everywhere.
func (h *Hub) BroadcastToRoom(ctx context.Context, event dto.ChatEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal event", map[string]interface{}{"error": err.Error()})
		return
	}

	if h.rdb == nil {
		h.deliverLocal(event, data)
		return
	}

	if err := h.rdb.Publish(ctx, fabricChannel, data).Err(); err != nil {
		h.logger.Warn("Hub", "Fabric publish failed, delivering locally", map[string]interface{}{"error": err.Error()})
		h.deliverLocal(event, data)
	}
}

func (h *Hub) deliverLocal(event dto.ChatEvent, data []byte) {
	// Typing and presence are not echoed back to the originator; message
	// events are, so the sender's other devices stay in sync.
	suppressSelf := event.Type == dto.EventTyping ||
		event.Type == dto.EventOnline ||
		event.Type == dto.EventOffline

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[event.RoomId] {
		if suppressSelf && client.UserID == event.UserId {
			continue
		}
		select {
		case client.Send <- data:
		default:
			// Slow consumer; drop the connection rather than the room.
			h.logger.Warn("Hub", "Client send buffer full, evicting", map[string]interface{}{
				"user_id": client.UserID,
				"room_id": client.RoomID,
			})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, fabricChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var event dto.ChatEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			h.logger.Warn("Hub", "Malformed fabric payload", map[string]interface{}{"error": err.Error()})
			continue
		}
		h.deliverLocal(event, []byte(msg.Payload))
	}
}
