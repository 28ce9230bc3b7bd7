package service

import (
	"context"
	"io"
	"time"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/logger"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/models"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/repository"
)

// TokenPair is what a successful login or refresh hands back.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type SignUpParams struct {
	Username string
	Email    string
	Password string
}

// Authorization covers the whole credential lifecycle: signup with email
// confirmation, login, token rotation, and resolving the current user
// from a bearer token.
type Authorization interface {
	SignUp(ctx context.Context, p SignUpParams) (*models.User, error)
	Login(ctx context.Context, email, password string) (TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Logout(ctx context.Context, userID int) error
	ConfirmEmail(ctx context.Context, token string) (alreadyConfirmed bool, err error)
	RequestConfirmation(ctx context.Context, email string) (alreadyConfirmed bool, err error)
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
}

// Contacts is the per-user contact book.
type Contacts interface {
	List(ctx context.Context, ownerID int, f repository.ContactFilter) ([]models.Contact, error)
	Get(ctx context.Context, id, ownerID int) (*models.Contact, error)
	UpcomingBirthdays(ctx context.Context, ownerID, days int) ([]models.Contact, error)
	Create(ctx context.Context, p repository.CreateContactParams, ownerID int) (*models.Contact, error)
	Update(ctx context.Context, id, ownerID int, email, phone string) (*models.Contact, error)
	Delete(ctx context.Context, id int) (*models.Contact, error)
}

// Users covers profile operations on the authenticated user.
type Users interface {
	UpdateAvatar(ctx context.Context, email string, file io.Reader) (*models.User, error)
}

// EmailSender delivers the confirmation link. Implemented by external/sendgrid.
type EmailSender interface {
	SendConfirmationEmail(ctx context.Context, toEmail, username, confirmURL string) error
}

// AvatarUploader stores an avatar image and returns its hosted URL.
// Implemented by external/cloudinary.
type AvatarUploader interface {
	Upload(ctx context.Context, email string, file io.Reader) (string, error)
}

// UserCache is the short-lived cache consulted by the access gate to skip
// a directory lookup per request. Entries expire on their own; staleness
// within the TTL is acceptable.
type UserCache interface {
	GetUser(ctx context.Context, email string) (*models.User, error)
	SetUser(ctx context.Context, u *models.User, ttl time.Duration) error
}

type Service struct {
	Authorization
	Contacts
	Users
}

// Deps carries every collaborator the services need, injected at startup.
type Deps struct {
	Repos    *repository.Repository
	Tokens   *TokenManager
	Mailer   EmailSender
	Uploader AvatarUploader
	Cache    UserCache
	BaseURL  string
	Log      *logger.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		Authorization: NewAuthService(d.Repos.Users, d.Tokens, d.Mailer, d.Cache, d.BaseURL, d.Log),
		Contacts:      NewContactService(d.Repos.Contacts),
		Users:         NewUserService(d.Repos.Users, d.Uploader),
	}
}
