package service

import (
	"context"
	"io"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/models"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/repository"
)

// UserService handles profile operations on the authenticated user.
type UserService struct {
	users    repository.Users
	uploader AvatarUploader
}

func NewUserService(users repository.Users, uploader AvatarUploader) *UserService {
	return &UserService{users: users, uploader: uploader}
}

var _ Users = (*UserService)(nil)

// UpdateAvatar pushes the image to the hosting service and stores the
// resulting URL. The gate's user cache is not invalidated; it expires on
// its own within seconds.
func (s *UserService) UpdateAvatar(ctx context.Context, email string, file io.Reader) (*models.User, error) {
	url, err := s.uploader.Upload(ctx, email, file)
	if err != nil {
		return nil, err
	}
	user, err := s.users.UpdateAvatar(ctx, email, url)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
