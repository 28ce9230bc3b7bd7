package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure implementation of Users interface at compile time.
var _ Users = (*UserRepository)(nil)

const (
	insertUserSQL = `INSERT INTO users (username, email, password_hash, avatar, role, confirmed) VALUES (?, ?, ?, ?, ?, ?)`

	selectUserByEmailSQL = `SELECT id, username, email, password_hash, refresh_token, avatar, role, confirmed FROM users WHERE email = ?`

	updateRefreshTokenSQL = `UPDATE users SET refresh_token = ? WHERE id = ?`

	confirmUserSQL = `UPDATE users SET confirmed = 1 WHERE email = ?`

	updateAvatarSQL = `UPDATE users SET avatar = ? WHERE email = ?`
)

// GetByEmail fetches a user by email. Returns (nil, nil) if not found.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, selectUserByEmailSQL, email).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.RefreshToken, &u.Avatar, &u.Role, &u.Confirmed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %q: %w", email, err)
	}
	return &u, nil
}

// Create inserts a new user with the default role and confirmed=false,
// and returns the stored record. Email uniqueness is enforced by the
// schema; callers check for duplicates first to map the conflict.
func (r *UserRepository) Create(ctx context.Context, p CreateUserParams) (*models.User, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL,
		p.Username, p.Email, p.PasswordHash, p.Avatar, models.RoleUser, false)
	if err != nil {
		return nil, fmt.Errorf("insert user %q: %w", p.Email, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id for user %q: %w", p.Email, err)
	}
	return &models.User{
		ID:           int(lastID),
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Avatar:       p.Avatar,
		Role:         models.RoleUser,
		Confirmed:    false,
	}, nil
}

// UpdateRefreshToken stores the current refresh token for a user;
// nil clears it (logout, revocation).
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID int, token *string) error {
	if _, err := r.db.ExecContext(ctx, updateRefreshTokenSQL, token, userID); err != nil {
		return fmt.Errorf("update refresh token for user %d: %w", userID, err)
	}
	return nil
}

// ConfirmEmail flips the confirmed flag. Confirming an already-confirmed
// user is a no-op and still succeeds.
func (r *UserRepository) ConfirmEmail(ctx context.Context, email string) error {
	if _, err := r.db.ExecContext(ctx, confirmUserSQL, email); err != nil {
		return fmt.Errorf("confirm user %q: %w", email, err)
	}
	return nil
}

// UpdateAvatar stores the hosted avatar URL and returns the updated user.
func (r *UserRepository) UpdateAvatar(ctx context.Context, email, url string) (*models.User, error) {
	if _, err := r.db.ExecContext(ctx, updateAvatarSQL, url, email); err != nil {
		return nil, fmt.Errorf("update avatar for user %q: %w", email, err)
	}
	return r.GetByEmail(ctx, email)
}
