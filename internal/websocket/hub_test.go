package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newTestHub() *Hub {
	return NewHub(nil, memory.NewPresenceRepository(), true, nopLogger{})
}

// addClient wires a client straight into the room map, bypassing the Run
// loop, so delivery can be observed synchronously.
func addClient(h *Hub, roomID int64, userID uuid.UUID) *Client {
	client := &Client{
		Hub:    h,
		UserID: userID,
		RoomID: roomID,
		Send:   make(chan []byte, 8),
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	return client
}

func receivedEvent(t *testing.T, c *Client) *dto.ChatEvent {
	t.Helper()
	select {
	case data := <-c.Send:
		var event dto.ChatEvent
		require.NoError(t, json.Unmarshal(data, &event))
		return &event
	default:
		return nil
	}
}

func TestMessageEventReachesEveryoneInTheRoom(t *testing.T) {
	h := newTestHub()
	sender := uuid.New()
	receiver := uuid.New()

	senderClient := addClient(h, 1, sender)
	receiverClient := addClient(h, 1, receiver)
	elsewhere := addClient(h, 2, uuid.New())

	h.BroadcastToRoom(context.Background(), dto.ChatEvent{
		Type:   dto.EventMessage,
		RoomId: 1,
		UserId: sender,
	})

	// The sender's connection gets the echo so other devices stay in sync.
	require.NotNil(t, receivedEvent(t, senderClient))
	event := receivedEvent(t, receiverClient)
	require.NotNil(t, event)
	assert.Equal(t, dto.EventMessage, event.Type)

	// Other rooms hear nothing.
	assert.Nil(t, receivedEvent(t, elsewhere))
}

func TestTypingAndPresenceAreNotEchoedToOriginator(t *testing.T) {
	h := newTestHub()
	typist := uuid.New()
	watcher := uuid.New()

	typistClient := addClient(h, 1, typist)
	watcherClient := addClient(h, 1, watcher)

	for _, eventType := range []string{dto.EventTyping, dto.EventOnline, dto.EventOffline} {
		h.BroadcastToRoom(context.Background(), dto.ChatEvent{
			Type:   eventType,
			RoomId: 1,
			UserId: typist,
		})

		assert.Nil(t, receivedEvent(t, typistClient), eventType)
		event := receivedEvent(t, watcherClient)
		require.NotNil(t, event, eventType)
		assert.Equal(t, eventType, event.Type)
	}
}

func TestRegisterUnregisterLifecycle(t *testing.T) {
	h := newTestHub()
	go h.Run()

	userID := uuid.New()
	client := &Client{
		Hub:    h,
		UserID: userID,
		RoomID: 1,
		Send:   make(chan []byte, 8),
	}

	h.register <- client
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return h.rooms[1][client]
	}, time.Second, 10*time.Millisecond)
	assert.True(t, h.presence.IsOnline(userID))

	h.unregister <- client
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.rooms[1]) == 0
	}, time.Second, 10*time.Millisecond)
	assert.False(t, h.presence.IsOnline(userID))
}

// Eviction and the read pump's deferred teardown can both unregister the
// same client; room peers must see a single offline event.
func TestDoubleUnregisterPublishesOfflineOnce(t *testing.T) {
	h := newTestHub()
	watcher := addClient(h, 1, uuid.New())
	leaver := addClient(h, 1, uuid.New())
	h.presence.MarkOnline(leaver.UserID)

	h.handleUnregister(leaver)
	h.handleUnregister(leaver)

	offline := 0
	for {
		event := receivedEvent(t, watcher)
		if event == nil {
			break
		}
		if event.Type == dto.EventOffline {
			offline++
		}
	}
	assert.Equal(t, 1, offline)
	assert.False(t, h.presence.IsOnline(leaver.UserID))
}

func TestPresenceEventsDisabledByConfig(t *testing.T) {
	h := NewHub(nil, memory.NewPresenceRepository(), false, nopLogger{})
	watcher := addClient(h, 1, uuid.New())

	joiner := &Client{
		Hub:    h,
		UserID: uuid.New(),
		RoomID: 1,
		Send:   make(chan []byte, 8),
	}
	h.handleRegister(joiner)
	assert.Nil(t, receivedEvent(t, watcher))

	h.handleUnregister(joiner)
	assert.Nil(t, receivedEvent(t, watcher))

	// Membership is still released either way.
	h.mu.RLock()
	assert.False(t, h.rooms[1][joiner])
	h.mu.RUnlock()

	// Chat traffic is unaffected by the flag.
	h.BroadcastToRoom(context.Background(), dto.ChatEvent{
		Type:   dto.EventMessage,
		RoomId: 1,
		UserId: joiner.UserID,
	})
	require.NotNil(t, receivedEvent(t, watcher))
}
