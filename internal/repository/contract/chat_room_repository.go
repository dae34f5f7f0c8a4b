package contract

import (
	"context"

	"support-chat-be/internal/entity"

	"github.com/google/uuid"
)

type ChatRoomRepository interface {
	// CreateIfAbsent inserts the room unless the (user, staff) pair already
	// exists; in that case it loads the existing row into room and returns
	// created=false. Safe under concurrent callers: the store's uniqueness
	// constraint serializes the race, not in-process locking.
	CreateIfAbsent(ctx context.Context, room *entity.ChatRoom) (created bool, err error)

	FindById(ctx context.Context, id int64) (*entity.ChatRoom, error)
	FindByPair(ctx context.Context, userID, staffID uuid.UUID) (*entity.ChatRoom, error)

	// FindForParticipant returns rooms where the user sits on either side,
	// newest-updated first.
	FindForParticipant(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.ChatRoom, error)
	CountForParticipant(ctx context.Context, userID uuid.UUID) (int64, error)

	// Touch bumps updated_at; called whenever a message lands in the room.
	Touch(ctx context.Context, id int64) error
}
