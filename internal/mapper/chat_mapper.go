package mapper

import (
	"support-chat-be/internal/entity"
	"support-chat-be/internal/model"

	"github.com/google/uuid"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Room Mappers

func (m *ChatMapper) RoomToEntity(r *model.ChatRoom) *entity.ChatRoom {
	if r == nil {
		return nil
	}

	return &entity.ChatRoom{
		Id:        r.Id,
		UserId:    r.UserId,
		StaffId:   r.StaffId,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (m *ChatMapper) RoomToModel(r *entity.ChatRoom) *model.ChatRoom {
	if r == nil {
		return nil
	}

	return &model.ChatRoom{
		Id:        r.Id,
		UserId:    r.UserId,
		StaffId:   r.StaffId,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.ChatMessage, readBy []uuid.UUID) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	return &entity.ChatMessage{
		Id:             msg.Id,
		RoomId:         msg.RoomId,
		SenderId:       msg.SenderId,
		Text:           msg.Text,
		AttachmentPath: msg.AttachmentPath,
		AttachmentType: msg.AttachmentType,
		CreatedAt:      msg.CreatedAt,
		IsDeleted:      msg.DeletedAt.Valid,
		ReadBy:         readBy,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	attachmentType := msg.AttachmentType
	if attachmentType == "" {
		attachmentType = entity.AttachmentNone
	}

	return &model.ChatMessage{
		Id:             msg.Id,
		RoomId:         msg.RoomId,
		SenderId:       msg.SenderId,
		Text:           msg.Text,
		AttachmentPath: msg.AttachmentPath,
		AttachmentType: attachmentType,
		CreatedAt:      msg.CreatedAt,
	}
}
