package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "chat.message_created").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic Event implementation used across the app.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Chat domain event codes. They travel over the durable bus as
// "events.<code>" subjects.
const (
	TypeChatRoomCreated    = "chat.room_created"
	TypeChatMessageCreated = "chat.message_created"
	TypeChatMessageDeleted = "chat.message_deleted"
	TypeChatMessagesRead   = "chat.messages_read"
)

func NewChatRoomCreated(roomID int64, userID, staffID string) BaseEvent {
	return BaseEvent{
		Type: TypeChatRoomCreated,
		Data: map[string]interface{}{
			"room_id":  roomID,
			"user_id":  userID,
			"staff_id": staffID,
		},
		OccurredAt: time.Now(),
	}
}

func NewChatMessageCreated(roomID, messageID int64, senderID string) BaseEvent {
	return BaseEvent{
		Type: TypeChatMessageCreated,
		Data: map[string]interface{}{
			"room_id":    roomID,
			"message_id": messageID,
			"sender_id":  senderID,
		},
		OccurredAt: time.Now(),
	}
}

func NewChatMessageDeleted(roomID, messageID int64, senderID string) BaseEvent {
	return BaseEvent{
		Type: TypeChatMessageDeleted,
		Data: map[string]interface{}{
			"room_id":    roomID,
			"message_id": messageID,
			"sender_id":  senderID,
		},
		OccurredAt: time.Now(),
	}
}

func NewChatMessagesRead(roomID int64, userID string) BaseEvent {
	return BaseEvent{
		Type: TypeChatMessagesRead,
		Data: map[string]interface{}{
			"room_id": roomID,
			"user_id": userID,
		},
		OccurredAt: time.Now(),
	}
}
