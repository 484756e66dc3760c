package services

import (
	"context"

	"chatline/domain"
	"chatline/repositories"

	"github.com/samber/lo"
)

type IUserService interface {
	Search(ctx context.Context, selfID, keyword string) ([]domain.PublicUser, error)
}

// UserService exposes the user directory. Results never include the
// requester and never carry credential fields.
type UserService struct {
	userRepository repositories.IUserRepository
}

func NewUserService(repo repositories.IUserRepository) *UserService {
	return &UserService{userRepository: repo}
}

func (s *UserService) Search(ctx context.Context, selfID, keyword string) ([]domain.PublicUser, error) {
	users, err := s.userRepository.Search(ctx, selfID, keyword)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u domain.User, _ int) domain.PublicUser {
		return u.Public()
	}), nil
}
