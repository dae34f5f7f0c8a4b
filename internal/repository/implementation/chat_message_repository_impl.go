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

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) Create(ctx context.Context, message *entity.ChatMessage) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m, message.ReadBy)
	return nil
}

func (r *ChatMessageRepositoryImpl) FindById(ctx context.Context, id int64) (*entity.ChatMessage, error) {
	var m model.ChatMessage
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	readSets, err := r.loadReadSets(ctx, []int64{m.Id})
	if err != nil {
		return nil, err
	}
	return r.mapper.MessageToEntity(&m, readSets[m.Id]), nil
}

func (r *ChatMessageRepositoryImpl) FindPageForRoom(ctx context.Context, roomID int64, limit, offset int) ([]*entity.ChatMessage, error) {
	var models []*model.ChatMessage
	query := r.db.WithContext(ctx)
	query = specification.ByRoomID{RoomID: roomID}.Apply(query)
	query = query.Order("created_at DESC, id DESC")
	query = specification.Pagination{Limit: limit, Offset: offset}.Apply(query)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	ids := make([]int64, len(models))
	for i, m := range models {
		ids[i] = m.Id
	}
	readSets, err := r.loadReadSets(ctx, ids)
	if err != nil {
		return nil, err
	}

	messages := make([]*entity.ChatMessage, len(models))
	for i, m := range models {
		messages[i] = r.mapper.MessageToEntity(m, readSets[m.Id])
	}
	return messages, nil
}

func (r *ChatMessageRepositoryImpl) CountForRoom(ctx context.Context, roomID int64) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.ChatMessage{})
	query = specification.ByRoomID{RoomID: roomID}.Apply(query)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChatMessageRepositoryImpl) LastForRoom(ctx context.Context, roomID int64) (*entity.ChatMessage, error) {
	var m model.ChatMessage
	err := specification.ByRoomID{RoomID: roomID}.
		Apply(r.db.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	readSets, err := r.loadReadSets(ctx, []int64{m.Id})
	if err != nil {
		return nil, err
	}
	return r.mapper.MessageToEntity(&m, readSets[m.Id]), nil
}

func (r *ChatMessageRepositoryImpl) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.ChatMessage{}, id).Error
}

func (r *ChatMessageRepositoryImpl) AddRead(ctx context.Context, messageID int64, userID uuid.UUID) error {
	read := &model.MessageRead{MessageId: messageID, UserId: userID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(read).Error
}

func (r *ChatMessageRepositoryImpl) MarkAllRead(ctx context.Context, roomID int64, userID uuid.UUID) error {
	// Set-insert for every non-own message in one statement; the composite PK
	// keeps concurrent callers idempotent.
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO message_reads (message_id, user_id, created_at)
		 SELECT id, ?, NOW() FROM chat_messages
		 WHERE room_id = ? AND sender_id <> ? AND deleted_at IS NULL
		 ON CONFLICT DO NOTHING`,
		userID, roomID, userID,
	).Error
}

func (r *ChatMessageRepositoryImpl) CountUnread(ctx context.Context, roomID int64, userID uuid.UUID) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.ChatMessage{})
	query = specification.ByRoomID{RoomID: roomID}.Apply(query)
	query = specification.NotSentBy{UserID: userID}.Apply(query)
	query = specification.UnreadBy{UserID: userID}.Apply(query)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChatMessageRepositoryImpl) CountTotalUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.ChatMessage{}).
		Joins("JOIN chat_rooms ON chat_rooms.id = chat_messages.room_id").
		Where("chat_rooms.user_id = ? OR chat_rooms.staff_id = ?", userID, userID)
	query = specification.NotSentBy{UserID: userID}.Apply(query)
	query = specification.UnreadBy{UserID: userID}.Apply(query)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChatMessageRepositoryImpl) loadReadSets(ctx context.Context, messageIDs []int64) (map[int64][]uuid.UUID, error) {
	result := make(map[int64][]uuid.UUID, len(messageIDs))
	if len(messageIDs) == 0 {
		return result, nil
	}

	var reads []*model.MessageRead
	err := r.db.WithContext(ctx).
		Where("message_id IN ?", messageIDs).
		Find(&reads).Error
	if err != nil {
		return nil, err
	}

	for _, read := range reads {
		result[read.MessageId] = append(result[read.MessageId], read.UserId)
	}
	return result, nil
}
