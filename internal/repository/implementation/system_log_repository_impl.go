package implementation

import (
	"context"
	"encoding/json"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/model"
	"support-chat-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SystemLogRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemLogRepository(db *gorm.DB) contract.SystemLogRepository {
	return &SystemLogRepositoryImpl{db: db}
}

func (r *SystemLogRepositoryImpl) Create(ctx context.Context, entry *entity.SystemLog) error {
	var details datatypes.JSON
	if entry.Details != nil {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return err
		}
		details = datatypes.JSON(raw)
	}

	m := &model.SystemLog{
		Id:      uuid.New(),
		Level:   entry.Level,
		Module:  entry.Module,
		Message: entry.Message,
		Details: details,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}

	entry.Id = m.Id
	entry.CreatedAt = m.CreatedAt
	return nil
}
