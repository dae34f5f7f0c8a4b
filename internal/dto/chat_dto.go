package dto

import (
	"time"

	"github.com/google/uuid"
)

type GetOrCreateRoomRequest struct {
	OtherUserId uuid.UUID `json:"other_user_id" validate:"required"`
}

type MarkReadRequest struct {
	RoomId int64 `json:"room_id" validate:"required"`
}

type SendMessageRequest struct {
	Room int64  `json:"room" form:"room" validate:"required"`
	Text string `json:"text" form:"text"`
}

type UserSummary struct {
	Id        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	IsStaff   bool      `json:"is_staff"`
	IsOnline  bool      `json:"is_online"`
}

type MessageResponse struct {
	Id             int64        `json:"id"`
	Room           int64        `json:"room"`
	SenderId       uuid.UUID    `json:"sender_id"`
	SenderInfo     *UserSummary `json:"sender_info,omitempty"`
	Text           *string      `json:"text"`
	AttachmentURL  *string      `json:"attachment_url"`
	AttachmentType string       `json:"attachment_type"`
	CreatedAt      time.Time    `json:"created_at"`
	IsRead         bool         `json:"is_read"`
	ReadBy         []uuid.UUID  `json:"read_by,omitempty"`
}

type RoomResponse struct {
	Id          int64            `json:"id"`
	UserId      uuid.UUID        `json:"user"`
	StaffId     uuid.UUID        `json:"staff"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	OtherUser   *UserSummary     `json:"other_user,omitempty"`
	LastMessage *MessageResponse `json:"last_message,omitempty"`
	UnreadCount int64            `json:"unread_count"`
}

type PaginatedResponse[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// ChatEvent is the envelope travelling over the broadcast fabric and down
// each websocket connection. UserId identifies the originator so receivers
// can suppress self-echo for typing/presence.
type ChatEvent struct {
	Type      string           `json:"type"`
	RoomId    int64            `json:"room_id"`
	UserId    uuid.UUID        `json:"user_id,omitempty"`
	Message   *MessageResponse `json:"message,omitempty"`
	MessageId int64            `json:"message_id,omitempty"`
	IsTyping  bool             `json:"is_typing,omitempty"`
	Error     string           `json:"error,omitempty"`
}

const (
	EventMessage = "message"
	EventRead    = "read"
	EventTyping  = "typing"
	EventOnline  = "online"
	EventOffline = "offline"
	EventDeleted = "deleted"
	EventError   = "error"
)
