package implementation

import (
	"context"
	"errors"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/mapper"
	"support-chat-be/internal/model"
	"support-chat-be/internal/repository/contract"
	"support-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRoomRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatRoomRepository(db *gorm.DB) contract.ChatRoomRepository {
	return &ChatRoomRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatRoomRepositoryImpl) CreateIfAbsent(ctx context.Context, room *entity.ChatRoom) (bool, error) {
	m := r.mapper.RoomToModel(room)

	// The unique index on (user_id, staff_id) arbitrates concurrent creators.
	// RowsAffected == 0 means someone else won the race (or the row predates
	// us); re-fetch and report created=false.
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "staff_id"}},
		DoNothing: true,
	}).Create(m)
	if res.Error != nil {
		return false, res.Error
	}

	if res.RowsAffected == 0 {
		existing, err := r.FindByPair(ctx, room.UserId, room.StaffId)
		if err != nil {
			return false, err
		}
		if existing == nil {
			return false, gorm.ErrRecordNotFound
		}
		*room = *existing
		return false, nil
	}

	*room = *r.mapper.RoomToEntity(m)
	return true, nil
}

func (r *ChatRoomRepositoryImpl) FindById(ctx context.Context, id int64) (*entity.ChatRoom, error) {
	var m model.ChatRoom
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.RoomToEntity(&m), nil
}

func (r *ChatRoomRepositoryImpl) FindByPair(ctx context.Context, userID, staffID uuid.UUID) (*entity.ChatRoom, error) {
	var m model.ChatRoom
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND staff_id = ?", userID, staffID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.RoomToEntity(&m), nil
}

func (r *ChatRoomRepositoryImpl) FindForParticipant(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.ChatRoom, error) {
	var models []*model.ChatRoom
	query := r.db.WithContext(ctx)
	query = specification.ParticipantRooms{UserID: userID}.Apply(query)
	query = specification.OrderBy{Field: "updated_at", Desc: true}.Apply(query)
	query = specification.Pagination{Limit: limit, Offset: offset}.Apply(query)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	rooms := make([]*entity.ChatRoom, len(models))
	for i, m := range models {
		rooms[i] = r.mapper.RoomToEntity(m)
	}
	return rooms, nil
}

func (r *ChatRoomRepositoryImpl) CountForParticipant(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	query := specification.ParticipantRooms{UserID: userID}.
		Apply(r.db.WithContext(ctx).Model(&model.ChatRoom{}))
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChatRoomRepositoryImpl) Touch(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.ChatRoom{}).
		Where("id = ?", id).
		Update("updated_at", gorm.Expr("NOW()")).Error
}
