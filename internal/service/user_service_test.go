package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/models"
)

type stubUploader struct {
	url string
	err error
}

func (u *stubUploader) Upload(_ context.Context, _ string, _ io.Reader) (string, error) {
	return u.url, u.err
}

func TestUserService_UpdateAvatar(t *testing.T) {
	const hosted = "https://res.cloudinary.com/demo/image/upload/c_fill,h_250,w_250/v1/hw14/abc"
	mock := &mockUserRepo{
		UpdateAvatarFn: func(email, url string) (*models.User, error) {
			if url != hosted {
				t.Fatalf("expected hosted URL stored, got %q", url)
			}
			return &models.User{ID: 7, Email: email, Avatar: &url}, nil
		},
	}
	svc := NewUserService(mock, &stubUploader{url: hosted})

	user, err := svc.UpdateAvatar(context.Background(), "diana@x.com", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("UpdateAvatar returned error: %v", err)
	}
	if user.Avatar == nil || *user.Avatar != hosted {
		t.Fatalf("avatar URL not set on returned user: %+v", user)
	}
}

func TestUserService_UpdateAvatar_UploadFails(t *testing.T) {
	mock := &mockUserRepo{
		UpdateAvatarFn: func(email, url string) (*models.User, error) {
			t.Fatal("repo should not be touched when the upload fails")
			return nil, nil
		},
	}
	svc := NewUserService(mock, &stubUploader{err: errors.New("upstream down")})

	if _, err := svc.UpdateAvatar(context.Background(), "diana@x.com", strings.NewReader("img")); err == nil {
		t.Fatalf("expected upload error, got nil")
	}
}

func TestUserService_UpdateAvatar_UnknownUser(t *testing.T) {
	mock := &mockUserRepo{
		UpdateAvatarFn: func(email, url string) (*models.User, error) { return nil, nil },
	}
	svc := NewUserService(mock, &stubUploader{url: "https://example.com/a.png"})

	if _, err := svc.UpdateAvatar(context.Background(), "gone@x.com", strings.NewReader("img")); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}
