package service

import (
	"context"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"

	"github.com/google/uuid"
)

// EventBroadcaster pushes a chat event to every open connection in a room,
// on this instance and on peers. The websocket hub implements it.
type EventBroadcaster interface {
	BroadcastToRoom(ctx context.Context, event dto.ChatEvent)
}

// PresenceChecker reports whether a user currently holds an open chat
// connection on this instance.
type PresenceChecker interface {
	IsOnline(userID uuid.UUID) bool
}

func toUserSummary(u *entity.User, presence PresenceChecker) *dto.UserSummary {
	if u == nil {
		return nil
	}
	online := false
	if presence != nil {
		online = presence.IsOnline(u.Id)
	}
	return &dto.UserSummary{
		Id:        u.Id,
		FullName:  u.FullName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		IsStaff:   u.IsStaff(),
		IsOnline:  online,
	}
}
