package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	AttachmentNone  = "none"
	AttachmentImage = "image"
	AttachmentVideo = "video"
)

type ChatMessage struct {
	Id             int64
	RoomId         int64
	SenderId       uuid.UUID
	Text           *string
	AttachmentPath *string
	AttachmentType string
	CreatedAt      time.Time
	IsDeleted      bool

	// ReadBy is the read-receipt set; always contains the sender.
	ReadBy []uuid.UUID
}

func (m *ChatMessage) IsReadBy(userID uuid.UUID) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
