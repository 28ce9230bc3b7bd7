package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/models"
)

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

var _ Contacts = (*ContactRepository)(nil)

const (
	contactColumns = `id, firstname, lastname, email, phone, birthday, created_at, updated_at, user_id`

	selectContactsSQL = `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = ? ORDER BY id ASC`

	selectContactByIDSQL = `SELECT ` + contactColumns + ` FROM contacts WHERE id = ? AND user_id = ?`

	selectContactByEmailSQL = `SELECT ` + contactColumns + ` FROM contacts WHERE email = ?`

	selectUpcomingBirthdaysSQL = `SELECT ` + contactColumns + ` FROM contacts
		WHERE user_id = ? AND birthday IS NOT NULL AND birthday > ? AND birthday <= ?
		ORDER BY birthday ASC`

	insertContactSQL = `INSERT INTO contacts (firstname, lastname, email, phone, birthday, created_at, updated_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	updateContactSQL = `UPDATE contacts SET email = ?, phone = ?, updated_at = ? WHERE id = ? AND user_id = ?`

	selectContactForDeleteSQL = `SELECT ` + contactColumns + ` FROM contacts WHERE id = ?`

	deleteContactSQL = `DELETE FROM contacts WHERE id = ?`
)

// birthdayWindow returns the (exclusive, inclusive] date-string bounds for
// the upcoming-birthdays query: a birthday of exactly "today" is outside
// the window, "today+days" is inside it.
func birthdayWindow(now time.Time, days int) (from, to string) {
	return now.Format(models.DateLayout), now.AddDate(0, 0, days).Format(models.DateLayout)
}

func scanContact(row interface{ Scan(...any) error }) (*models.Contact, error) {
	var c models.Contact
	err := row.Scan(
		&c.ID, &c.Firstname, &c.Lastname, &c.Email, &c.Phone,
		&c.Birthday, &c.CreatedAt, &c.UpdatedAt, &c.UserID,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContactRepository) collect(rows *sql.Rows) ([]models.Contact, error) {
	defer rows.Close()

	out := make([]models.Contact, 0, 16)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return out, nil
}

// List returns every contact owned by ownerID.
func (r *ContactRepository) List(ctx context.Context, ownerID int) ([]models.Contact, error) {
	rows, err := r.db.QueryContext(ctx, selectContactsSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list contacts for user %d: %w", ownerID, err)
	}
	return r.collect(rows)
}

// Filter lists contacts matching the non-empty filter fields, ANDed,
// always constrained to the owner.
func (r *ContactRepository) Filter(ctx context.Context, ownerID int, f ContactFilter) ([]models.Contact, error) {
	conds := []string{"user_id = ?"}
	args := []any{ownerID}

	if f.Firstname != "" {
		conds = append(conds, "firstname = ?")
		args = append(args, f.Firstname)
	}
	if f.Lastname != "" {
		conds = append(conds, "lastname = ?")
		args = append(args, f.Lastname)
	}
	if f.Email != "" {
		conds = append(conds, "email = ?")
		args = append(args, f.Email)
	}

	q := `SELECT ` + contactColumns + ` FROM contacts WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("filter contacts for user %d: %w", ownerID, err)
	}
	return r.collect(rows)
}

// GetByID fetches a single contact scoped to its owner. Returns (nil, nil) if not found.
func (r *ContactRepository) GetByID(ctx context.Context, id, ownerID int) (*models.Contact, error) {
	c, err := scanContact(r.db.QueryRowContext(ctx, selectContactByIDSQL, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select contact %d: %w", id, err)
	}
	return c, nil
}

// GetByEmail looks a contact up by its unique email, across all owners;
// used for the duplicate check before insert. Returns (nil, nil) if not found.
func (r *ContactRepository) GetByEmail(ctx context.Context, email string) (*models.Contact, error) {
	c, err := scanContact(r.db.QueryRowContext(ctx, selectContactByEmailSQL, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select contact %q: %w", email, err)
	}
	return c, nil
}

// UpcomingBirthdays selects the owner's contacts whose birthday falls in
// (today, today+days].
func (r *ContactRepository) UpcomingBirthdays(ctx context.Context, ownerID, days int) ([]models.Contact, error) {
	from, to := birthdayWindow(time.Now(), days)
	rows, err := r.db.QueryContext(ctx, selectUpcomingBirthdaysSQL, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("upcoming birthdays for user %d: %w", ownerID, err)
	}
	return r.collect(rows)
}

// Create inserts a contact for ownerID and returns the stored record.
func (r *ContactRepository) Create(ctx context.Context, p CreateContactParams, ownerID int) (*models.Contact, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, insertContactSQL,
		p.Firstname, p.Lastname, p.Email, p.Phone, p.Birthday, now, now, ownerID)
	if err != nil {
		return nil, fmt.Errorf("insert contact %q: %w", p.Email, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id for contact %q: %w", p.Email, err)
	}
	return &models.Contact{
		ID:        int(lastID),
		Firstname: p.Firstname,
		Lastname:  p.Lastname,
		Email:     p.Email,
		Phone:     p.Phone,
		Birthday:  p.Birthday,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    ownerID,
	}, nil
}

// Update changes email and phone only; every other field stays as stored.
// Returns (nil, nil) when the contact does not exist for this owner.
func (r *ContactRepository) Update(ctx context.Context, id, ownerID int, email, phone string) (*models.Contact, error) {
	res, err := r.db.ExecContext(ctx, updateContactSQL, email, phone, time.Now().UTC(), id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("update contact %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected for contact %d: %w", id, err)
	}
	if affected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id, ownerID)
}

// Delete removes a contact by id and returns the deleted record, or
// (nil, nil) if it was already gone. Not scoped to an owner; the HTTP
// layer restricts the operation to admins.
func (r *ContactRepository) Delete(ctx context.Context, id int) (*models.Contact, error) {
	c, err := scanContact(r.db.QueryRowContext(ctx, selectContactForDeleteSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select contact %d: %w", id, err)
	}
	if _, err := r.db.ExecContext(ctx, deleteContactSQL, id); err != nil {
		return nil, fmt.Errorf("delete contact %d: %w", id, err)
	}
	return c, nil
}
