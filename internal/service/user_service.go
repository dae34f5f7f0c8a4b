package service

import (
	"context"
	"fmt"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/repository/unitofwork"
)

type IUserService interface {
	// ListStaff returns the staff directory customers pick a counterpart from.
	ListStaff(ctx context.Context) ([]dto.UserSummary, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
	presence   PresenceChecker
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, presence PresenceChecker) IUserService {
	return &userService{
		uowFactory: uowFactory,
		presence:   presence,
	}
}

func (s *userService) ListStaff(ctx context.Context) ([]dto.UserSummary, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	staff, err := uow.UserRepository().FindStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	result := make([]dto.UserSummary, 0, len(staff))
	for _, u := range staff {
		result = append(result, *toUserSummary(u, s.presence))
	}
	return result, nil
}
