package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatRoom is a 1:1 conversation between a regular user and a staff member.
// The composite unique index serializes concurrent get-or-create attempts for
// the same pair at the store level.
type ChatRoom struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_rooms_pair,priority:1"`
	StaffId   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_rooms_pair,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// ChatMessage rows are the ordering authority for a room: created_at with the
// auto-increment id as tiebreak.
type ChatMessage struct {
	Id             int64          `gorm:"primaryKey;autoIncrement"`
	RoomId         int64          `gorm:"not null;index:idx_chat_messages_room_created,priority:1"`
	SenderId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Text           *string        `gorm:"type:text"`
	AttachmentPath *string        `gorm:"type:text"`
	AttachmentType string         `gorm:"type:varchar(10);not null;default:'none'"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index:idx_chat_messages_room_created,priority:2"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// MessageRead is the read-receipt set. The composite primary key makes
// set-inserts idempotent (ON CONFLICT DO NOTHING).
type MessageRead struct {
	MessageId int64     `gorm:"primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (MessageRead) TableName() string {
	return "message_reads"
}
