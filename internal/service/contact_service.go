package service

import (
	"context"
	"errors"
	"time"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/models"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/repository"
)

// Domain errors for contact flows.
var (
	ErrContactExists   = errors.New("contact already exists")
	ErrContactNotFound = errors.New("contact not found")
	ErrInvalidBirthday = errors.New("birthday must be YYYY-MM-DD")
	ErrInvalidDays     = errors.New("days must be positive")
)

// ContactService enforces the conflict/not-found semantics over the store.
type ContactService struct {
	contacts repository.Contacts
}

func NewContactService(contacts repository.Contacts) *ContactService {
	return &ContactService{contacts: contacts}
}

var _ Contacts = (*ContactService)(nil)

// List returns the owner's contacts, narrowed by any non-empty filter fields.
func (s *ContactService) List(ctx context.Context, ownerID int, f repository.ContactFilter) ([]models.Contact, error) {
	if f == (repository.ContactFilter{}) {
		return s.contacts.List(ctx, ownerID)
	}
	return s.contacts.Filter(ctx, ownerID, f)
}

func (s *ContactService) Get(ctx context.Context, id, ownerID int) (*models.Contact, error) {
	c, err := s.contacts.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrContactNotFound
	}
	return c, nil
}

func (s *ContactService) UpcomingBirthdays(ctx context.Context, ownerID, days int) ([]models.Contact, error) {
	if days < 1 {
		return nil, ErrInvalidDays
	}
	return s.contacts.UpcomingBirthdays(ctx, ownerID, days)
}

// Create rejects a duplicate contact email before inserting.
func (s *ContactService) Create(ctx context.Context, p repository.CreateContactParams, ownerID int) (*models.Contact, error) {
	if p.Birthday != nil {
		if _, err := time.Parse(models.DateLayout, *p.Birthday); err != nil {
			return nil, ErrInvalidBirthday
		}
	}
	existing, err := s.contacts.GetByEmail(ctx, p.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrContactExists
	}
	return s.contacts.Create(ctx, p, ownerID)
}

// Update changes email and phone only.
func (s *ContactService) Update(ctx context.Context, id, ownerID int, email, phone string) (*models.Contact, error) {
	c, err := s.contacts.Update(ctx, id, ownerID, email, phone)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrContactNotFound
	}
	return c, nil
}

// Delete removes by id alone; the handler layer restricts this to admins.
func (s *ContactService) Delete(ctx context.Context, id int) (*models.Contact, error) {
	c, err := s.contacts.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrContactNotFound
	}
	return c, nil
}
