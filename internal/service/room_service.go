package service

import (
	"context"
	"encoding/json"
	"fmt"

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

type IChatRoomService interface {
	// GetOrCreate returns the single room for the caller/other pair, creating
	// it when absent. created distinguishes 201 from 200 at the surface.
	GetOrCreate(ctx context.Context, callerID, otherID uuid.UUID) (res *dto.RoomResponse, created bool, err error)

	List(ctx context.Context, callerID uuid.UUID, page int) (*dto.PaginatedResponse[dto.RoomResponse], error)
	UnreadCount(ctx context.Context, callerID uuid.UUID, roomID int64) (*dto.UnreadCountResponse, error)
	TotalUnread(ctx context.Context, callerID uuid.UUID) (*dto.UnreadCountResponse, error)
}

type chatRoomService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *cache.ChatCache
	presence   PresenceChecker
	storage    storage.AttachmentStorage
	activity   IActivityService
	logger     logger.ILogger
	pageSize   int
}

func NewChatRoomService(
	uowFactory unitofwork.RepositoryFactory,
	chatCache *cache.ChatCache,
	presence PresenceChecker,
	attachmentStorage storage.AttachmentStorage,
	activity IActivityService,
	log logger.ILogger,
	pageSize int,
) IChatRoomService {
	return &chatRoomService{
		uowFactory: uowFactory,
		cache:      chatCache,
		presence:   presence,
		storage:    attachmentStorage,
		activity:   activity,
		logger:     log,
		pageSize:   pageSize,
	}
}

func (s *chatRoomService) GetOrCreate(ctx context.Context, callerID, otherID uuid.UUID) (*dto.RoomResponse, bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	caller, err := requireActiveUser(ctx, uow, callerID)
	if err != nil {
		return nil, false, err
	}

	other, err := uow.UserRepository().FindById(ctx, otherID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load recipient: %w", err)
	}
	if other == nil {
		return nil, false, serverutils.NewNotFoundError("user not found")
	}
	if !other.IsActive() {
		return nil, false, serverutils.NewValidationError("recipient account is not active", nil)
	}

	// A room always pairs one customer with one staff member.
	var customer, staff *entity.User
	switch {
	case caller.IsStaff() && !other.IsStaff():
		customer, staff = other, caller
	case !caller.IsStaff() && other.IsStaff():
		customer, staff = caller, other
	default:
		return nil, false, serverutils.NewValidationError("a conversation requires one customer and one staff member", nil)
	}

	room := &entity.ChatRoom{UserId: customer.Id, StaffId: staff.Id}
	created, err := uow.ChatRoomRepository().CreateIfAbsent(ctx, room)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get or create room: %w", err)
	}

	if created {
		s.cache.InvalidateRoom(ctx, room.Id, room.ParticipantIds())
		s.activity.Record(ctx, "ChatRoomService", "chat room created",
			events.NewChatRoomCreated(room.Id, customer.Id.String(), staff.Id.String()))
	}

	res, err := s.buildRoomResponse(ctx, uow, room, callerID, other)
	if err != nil {
		return nil, false, err
	}
	return res, created, nil
}

func (s *chatRoomService) List(ctx context.Context, callerID uuid.UUID, page int) (*dto.PaginatedResponse[dto.RoomResponse], error) {
	if page < 1 {
		page = 1
	}

	// Only the first page is cached; it is the one every client polls.
	if page == 1 {
		if data, ok := s.cache.GetRoomList(ctx, callerID); ok {
			var cached dto.PaginatedResponse[dto.RoomResponse]
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	rooms, err := uow.ChatRoomRepository().FindForParticipant(ctx, callerID, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	total, err := uow.ChatRoomRepository().CountForParticipant(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count rooms: %w", err)
	}

	// Batch-load the counterparts to avoid one lookup per room.
	otherIDs := make([]uuid.UUID, 0, len(rooms))
	for _, room := range rooms {
		otherIDs = append(otherIDs, room.OtherParticipant(callerID))
	}
	others, err := uow.UserRepository().FindByIds(ctx, otherIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	othersByID := make(map[uuid.UUID]*entity.User, len(others))
	for _, u := range others {
		othersByID[u.Id] = u
	}

	results := make([]dto.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		res, err := s.buildRoomResponse(ctx, uow, room, callerID, othersByID[room.OtherParticipant(callerID)])
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}

	response := &dto.PaginatedResponse[dto.RoomResponse]{
		Count:    total,
		Page:     page,
		PageSize: s.pageSize,
		Results:  results,
	}

	if page == 1 {
		if data, err := json.Marshal(response); err == nil {
			s.cache.SetRoomList(ctx, callerID, data)
		}
	}
	return response, nil
}

func (s *chatRoomService) UnreadCount(ctx context.Context, callerID uuid.UUID, roomID int64) (*dto.UnreadCountResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	room, err := uow.ChatRoomRepository().FindById(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil {
		return nil, serverutils.NewNotFoundError("room not found")
	}
	if !room.HasParticipant(callerID) {
		return nil, serverutils.NewPermissionError("not a participant of this room")
	}

	count, err := s.unreadForRoom(ctx, uow, room, callerID)
	if err != nil {
		return nil, err
	}
	return &dto.UnreadCountResponse{Count: count}, nil
}

func (s *chatRoomService) TotalUnread(ctx context.Context, callerID uuid.UUID) (*dto.UnreadCountResponse, error) {
	if count, ok := s.cache.GetTotalUnread(ctx, callerID); ok {
		return &dto.UnreadCountResponse{Count: count}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.ChatMessageRepository().CountTotalUnread(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread messages: %w", err)
	}

	s.cache.SetTotalUnread(ctx, callerID, count)
	return &dto.UnreadCountResponse{Count: count}, nil
}

func (s *chatRoomService) unreadForRoom(ctx context.Context, uow unitofwork.UnitOfWork, room *entity.ChatRoom, userID uuid.UUID) (int64, error) {
	if count, ok := s.cache.GetUnreadCount(ctx, room.Id, userID); ok {
		return count, nil
	}

	count, err := uow.ChatMessageRepository().CountUnread(ctx, room.Id, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}

	s.cache.SetUnreadCount(ctx, room.Id, userID, count)
	return count, nil
}

func (s *chatRoomService) buildRoomResponse(ctx context.Context, uow unitofwork.UnitOfWork, room *entity.ChatRoom, callerID uuid.UUID, other *entity.User) (*dto.RoomResponse, error) {
	last, err := uow.ChatMessageRepository().LastForRoom(ctx, room.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to load last message: %w", err)
	}

	unread, err := s.unreadForRoom(ctx, uow, room, callerID)
	if err != nil {
		return nil, err
	}

	res := &dto.RoomResponse{
		Id:          room.Id,
		UserId:      room.UserId,
		StaffId:     room.StaffId,
		CreatedAt:   room.CreatedAt,
		UpdatedAt:   room.UpdatedAt,
		OtherUser:   toUserSummary(other, s.presence),
		UnreadCount: unread,
	}
	if last != nil {
		res.LastMessage = toMessageResponse(last, nil, s.storage)
	}
	return res, nil
}

func requireActiveUser(ctx context.Context, uow unitofwork.UnitOfWork, userID uuid.UUID) (*entity.User, error) {
	user, err := uow.UserRepository().FindById(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, serverutils.NewAuthError("unknown identity")
	}
	if !user.IsActive() {
		return nil, serverutils.NewPermissionError("account is not active")
	}
	return user, nil
}
