package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByRoomID filters messages by their owning room.
type ByRoomID struct {
	RoomID int64
}

func (s ByRoomID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("room_id = ?", s.RoomID)
}

// ParticipantRooms matches rooms where the user sits on either side.
type ParticipantRooms struct {
	UserID uuid.UUID
}

func (s ParticipantRooms) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ? OR staff_id = ?", s.UserID, s.UserID)
}

// NotSentBy excludes a user's own messages (unread counting never counts the
// author's side).
type NotSentBy struct {
	UserID uuid.UUID
}

func (s NotSentBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sender_id <> ?", s.UserID)
}

// UnreadBy matches messages whose read-set does not contain the user.
type UnreadBy struct {
	UserID uuid.UUID
}

func (s UnreadBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(
		"NOT EXISTS (SELECT 1 FROM message_reads mr WHERE mr.message_id = chat_messages.id AND mr.user_id = ?)",
		s.UserID,
	)
}

// ByRole filters users by role.
type ByRole struct {
	Roles []string
}

func (s ByRole) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("role IN ?", s.Roles)
}
