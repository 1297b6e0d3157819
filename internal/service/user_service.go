package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hyperingenious/fold-backend/internal/domain"
	"github.com/hyperingenious/fold-backend/internal/repository"
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// UpdateProfileRequest distinguishes absent fields from explicit nulls:
// a nil Avatar with AvatarSet true clears the avatar.
type UpdateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	Avatar    *string `json:"avatar" validate:"omitempty,url"`
	AvatarSet bool    `json:"-"`
}

func (r UpdateProfileRequest) empty() bool {
	return r.Name == nil && !r.AvatarSet
}

// GetProfile returns the user's profile.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a partial profile update and returns the fresh
// row. An empty request is a no-op read.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*domain.User, error) {
	if req.empty() {
		return s.GetProfile(ctx, userID)
	}

	update := domain.ProfileUpdate{
		Name:     req.Name,
		Image:    req.Avatar,
		ImageSet: req.AvatarSet,
	}

	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user; sessions, accounts, and journal rows
// cascade in the database.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	err := s.users.Delete(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
