package repository

import (
	"context"
	"database/sql"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/models"
)

// CreateUserParams carries everything needed to insert a new user row.
// New users always start unconfirmed with the default role.
type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	Avatar       *string
}

// ContactFilter narrows a contact listing; empty fields are ignored
// and the provided ones are ANDed together.
type ContactFilter struct {
	Firstname string
	Lastname  string
	Email     string
}

type CreateContactParams struct {
	Firstname string
	Lastname  string
	Email     string
	Phone     string
	Birthday  *string // YYYY-MM-DD
}

type Users interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, p CreateUserParams) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, userID int, token *string) error
	ConfirmEmail(ctx context.Context, email string) error
	UpdateAvatar(ctx context.Context, email, url string) (*models.User, error)
}

type Contacts interface {
	List(ctx context.Context, ownerID int) ([]models.Contact, error)
	Filter(ctx context.Context, ownerID int, f ContactFilter) ([]models.Contact, error)
	GetByID(ctx context.Context, id, ownerID int) (*models.Contact, error)
	GetByEmail(ctx context.Context, email string) (*models.Contact, error)
	UpcomingBirthdays(ctx context.Context, ownerID, days int) ([]models.Contact, error)
	Create(ctx context.Context, p CreateContactParams, ownerID int) (*models.Contact, error)
	Update(ctx context.Context, id, ownerID int, email, phone string) (*models.Contact, error)
	Delete(ctx context.Context, id int) (*models.Contact, error)
}

type Repository struct {
	Users    Users
	Contacts Contacts
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users:    NewUserRepository(db),
		Contacts: NewContactRepository(db),
	}
}
