package contract

import (
	"context"

	"support-chat-be/internal/entity"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindById(ctx context.Context, id int64) (*entity.ChatMessage, error)

	// FindPageForRoom returns a newest-first page of non-deleted messages with
	// their read-sets hydrated.
	FindPageForRoom(ctx context.Context, roomID int64, limit, offset int) ([]*entity.ChatMessage, error)
	CountForRoom(ctx context.Context, roomID int64) (int64, error)
	LastForRoom(ctx context.Context, roomID int64) (*entity.ChatMessage, error)

	Delete(ctx context.Context, id int64) error

	// AddRead and MarkAllRead are idempotent set-inserts.
	AddRead(ctx context.Context, messageID int64, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, roomID int64, userID uuid.UUID) error

	CountUnread(ctx context.Context, roomID int64, userID uuid.UUID) (int64, error)
	CountTotalUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}
