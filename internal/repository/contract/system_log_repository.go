package contract

import (
	"context"

	"support-chat-be/internal/entity"
)

type SystemLogRepository interface {
	Create(ctx context.Context, entry *entity.SystemLog) error
}
