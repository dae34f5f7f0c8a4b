package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatRoom struct {
	Id        int64
	UserId    uuid.UUID
	StaffId   uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ParticipantIds returns both sides of the conversation. Permission checks
// reduce to one rule: staff caller, or caller in ParticipantIds.
func (r *ChatRoom) ParticipantIds() [2]uuid.UUID {
	return [2]uuid.UUID{r.UserId, r.StaffId}
}

func (r *ChatRoom) HasParticipant(userID uuid.UUID) bool {
	return r.UserId == userID || r.StaffId == userID
}

// OtherParticipant returns the counterpart of the given participant.
func (r *ChatRoom) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if r.UserId == userID {
		return r.StaffId
	}
	return r.UserId
}
