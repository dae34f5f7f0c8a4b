package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"support-chat-be/internal/cache"
	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/pkg/storage"
	"support-chat-be/internal/repository/unitofwork"
	"support-chat-be/pkg/events"

	"github.com/google/uuid"
)

// maxAttachmentSize caps a single attachment at 15MB.
const maxAttachmentSize = 15 << 20

// AttachmentUpload carries an inbound attachment from the multipart surface.
type AttachmentUpload struct {
	Filename string
	Data     []byte
}

type IChatMessageService interface {
	Send(ctx context.Context, senderID uuid.UUID, req *dto.SendMessageRequest, attachment *AttachmentUpload) (*dto.MessageResponse, error)
	ListForRoom(ctx context.Context, callerID uuid.UUID, roomID int64, page int) (*dto.PaginatedResponse[dto.MessageResponse], error)
	MarkAllRead(ctx context.Context, callerID uuid.UUID, roomID int64) error
	Delete(ctx context.Context, callerID uuid.UUID, messageID int64) error
}

type chatMessageService struct {
	uowFactory  unitofwork.RepositoryFactory
	cache       *cache.ChatCache
	presence    PresenceChecker
	storage     storage.AttachmentStorage
	broadcaster EventBroadcaster
	activity    IActivityService
	logger      logger.ILogger
	pageSize    int
}

func NewChatMessageService(
	uowFactory unitofwork.RepositoryFactory,
	chatCache *cache.ChatCache,
	presence PresenceChecker,
	attachmentStorage storage.AttachmentStorage,
	broadcaster EventBroadcaster,
	activity IActivityService,
	log logger.ILogger,
	pageSize int,
) IChatMessageService {
	return &chatMessageService{
		uowFactory:  uowFactory,
		cache:       chatCache,
		presence:    presence,
		storage:     attachmentStorage,
		broadcaster: broadcaster,
		activity:    activity,
		logger:      log,
		pageSize:    pageSize,
	}
}

func (s *chatMessageService) Send(ctx context.Context, senderID uuid.UUID, req *dto.SendMessageRequest, attachment *AttachmentUpload) (*dto.MessageResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" && attachment == nil {
		return nil, serverutils.NewValidationError("message text or attachment is required", map[string]string{
			"text": "text or attachment is required",
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	sender, err := requireActiveUser(ctx, uow, senderID)
	if err != nil {
		return nil, err
	}

	room, err := uow.ChatRoomRepository().FindById(ctx, req.Room)
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil {
		return nil, serverutils.NewNotFoundError("room not found")
	}
	if !room.HasParticipant(senderID) {
		return nil, serverutils.NewPermissionError("not a participant of this room")
	}

	msg := &entity.ChatMessage{
		RoomId:         room.Id,
		SenderId:       senderID,
		AttachmentType: entity.AttachmentNone,
		ReadBy:         []uuid.UUID{senderID},
	}
	if text != "" {
		msg.Text = &text
	}

	if attachment != nil {
		if len(attachment.Data) > maxAttachmentSize {
			return nil, serverutils.NewCapacityError("attachment exceeds the 15MB limit")
		}
		kind := storage.DetectMediaKind(attachment.Data)
		if kind == entity.AttachmentNone {
			return nil, serverutils.NewValidationError("only image and video attachments are allowed", map[string]string{
				"attachment": "unsupported media type",
			})
		}
		path, err := s.storage.Save(attachment.Data, attachment.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		msg.AttachmentPath = &path
		msg.AttachmentType = kind
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	// The sender has trivially read their own message.
	if err := uow.ChatMessageRepository().AddRead(ctx, msg.Id, senderID); err != nil {
		return nil, fmt.Errorf("failed to record sender read: %w", err)
	}
	if err := uow.ChatRoomRepository().Touch(ctx, room.Id); err != nil {
		return nil, fmt.Errorf("failed to touch room: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit message: %w", err)
	}

	s.cache.InvalidateRoom(ctx, room.Id, room.ParticipantIds())
	s.cache.InvalidateUnread(ctx, room.Id, room.OtherParticipant(senderID))

	res := toMessageResponse(msg, toUserSummary(sender, s.presence), s.storage)

	s.broadcaster.BroadcastToRoom(ctx, dto.ChatEvent{
		Type:    dto.EventMessage,
		RoomId:  room.Id,
		UserId:  senderID,
		Message: res,
	})

	s.activity.Record(ctx, "ChatMessageService", "chat message created",
		events.NewChatMessageCreated(room.Id, msg.Id, senderID.String()))

	return res, nil
}

func (s *chatMessageService) ListForRoom(ctx context.Context, callerID uuid.UUID, roomID int64, page int) (*dto.PaginatedResponse[dto.MessageResponse], error) {
	if page < 1 {
		page = 1
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	caller, err := requireActiveUser(ctx, uow, callerID)
	if err != nil {
		return nil, err
	}

	room, err := uow.ChatRoomRepository().FindById(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil {
		return nil, serverutils.NewNotFoundError("room not found")
	}
	// Staff may read any room for oversight; customers only their own.
	if !room.HasParticipant(callerID) && !caller.IsStaff() {
		return nil, serverutils.NewPermissionError("not a participant of this room")
	}

	if data, ok := s.cache.GetMessagePage(ctx, roomID, page); ok {
		var cached dto.PaginatedResponse[dto.MessageResponse]
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	messages, err := uow.ChatMessageRepository().FindPageForRoom(ctx, roomID, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	total, err := uow.ChatMessageRepository().CountForRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	senderIDs := make([]uuid.UUID, 0, len(messages))
	seen := make(map[uuid.UUID]bool, 2)
	for _, msg := range messages {
		if !seen[msg.SenderId] {
			seen[msg.SenderId] = true
			senderIDs = append(senderIDs, msg.SenderId)
		}
	}
	senders, err := uow.UserRepository().FindByIds(ctx, senderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load senders: %w", err)
	}
	sendersByID := make(map[uuid.UUID]*entity.User, len(senders))
	for _, u := range senders {
		sendersByID[u.Id] = u
	}

	results := make([]dto.MessageResponse, 0, len(messages))
	for _, msg := range messages {
		results = append(results, *toMessageResponse(msg, toUserSummary(sendersByID[msg.SenderId], s.presence), s.storage))
	}

	response := &dto.PaginatedResponse[dto.MessageResponse]{
		Count:    total,
		Page:     page,
		PageSize: s.pageSize,
		Results:  results,
	}

	if data, err := json.Marshal(response); err == nil {
		s.cache.SetMessagePage(ctx, roomID, page, data)
	}
	return response, nil
}

func (s *chatMessageService) MarkAllRead(ctx context.Context, callerID uuid.UUID, roomID int64) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	room, err := uow.ChatRoomRepository().FindById(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil {
		return serverutils.NewNotFoundError("room not found")
	}
	if !room.HasParticipant(callerID) {
		return serverutils.NewPermissionError("not a participant of this room")
	}

	if err := uow.ChatMessageRepository().MarkAllRead(ctx, roomID, callerID); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}

	// Read-sets changed, so cached pages are stale too.
	s.cache.InvalidateRoom(ctx, roomID, room.ParticipantIds())
	s.cache.InvalidateUnread(ctx, roomID, callerID)

	s.broadcaster.BroadcastToRoom(ctx, dto.ChatEvent{
		Type:   dto.EventRead,
		RoomId: roomID,
		UserId: callerID,
	})

	s.activity.Record(ctx, "ChatMessageService", "chat messages read",
		events.NewChatMessagesRead(roomID, callerID.String()))

	return nil
}

func (s *chatMessageService) Delete(ctx context.Context, callerID uuid.UUID, messageID int64) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	msg, err := uow.ChatMessageRepository().FindById(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to load message: %w", err)
	}
	if msg == nil || msg.IsDeleted {
		return serverutils.NewNotFoundError("message not found")
	}
	if msg.SenderId != callerID {
		return serverutils.NewPermissionError("only the sender can delete a message")
	}

	room, err := uow.ChatRoomRepository().FindById(ctx, msg.RoomId)
	if err != nil {
		return fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil {
		return serverutils.NewNotFoundError("room not found")
	}

	if err := uow.ChatMessageRepository().Delete(ctx, messageID); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	s.cache.InvalidateRoom(ctx, room.Id, room.ParticipantIds())
	// An unread message disappearing moves the counterpart's counters.
	s.cache.InvalidateUnread(ctx, room.Id, room.ParticipantIds()[0], room.ParticipantIds()[1])

	s.broadcaster.BroadcastToRoom(ctx, dto.ChatEvent{
		Type:      dto.EventDeleted,
		RoomId:    room.Id,
		UserId:    callerID,
		MessageId: messageID,
	})

	s.activity.Record(ctx, "ChatMessageService", "chat message deleted",
		events.NewChatMessageDeleted(room.Id, messageID, callerID.String()))

	return nil
}

func toMessageResponse(msg *entity.ChatMessage, senderInfo *dto.UserSummary, store storage.AttachmentStorage) *dto.MessageResponse {
	res := &dto.MessageResponse{
		Id:             msg.Id,
		Room:           msg.RoomId,
		SenderId:       msg.SenderId,
		SenderInfo:     senderInfo,
		Text:           msg.Text,
		AttachmentType: msg.AttachmentType,
		CreatedAt:      msg.CreatedAt,
		// Read means seen by someone besides the sender.
		IsRead: len(msg.ReadBy) > 1,
		ReadBy: msg.ReadBy,
	}
	if msg.AttachmentPath != nil {
		url := store.URL(*msg.AttachmentPath)
		res.AttachmentURL = &url
	}
	return res
}
