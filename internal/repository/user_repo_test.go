// user_repo_test.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/models"
)

func newMockUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewUserRepository(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

func userRows(u models.User) *sqlmock.Rows {
	// NULLable columns must be added as plain values or nil, not pointers
	var refresh, avatar any
	if u.RefreshToken != nil {
		refresh = *u.RefreshToken
	}
	if u.Avatar != nil {
		avatar = *u.Avatar
	}
	return sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "refresh_token", "avatar", "role", "confirmed"}).
		AddRow(u.ID, u.Username, u.Email, u.PasswordHash, refresh, avatar, string(u.Role), u.Confirmed)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	tests := []struct {
		name           string
		email          string
		mockExpect     func(sqlmock.Sqlmock)
		wantUser       *models.User
		wantErr        bool
		errContainsStr string
	}{
		{
			name:  "found",
			email: "alice@example.com",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectUserByEmailSQL)).
					WithArgs("alice@example.com").
					WillReturnRows(userRows(models.User{
						ID: 7, Username: "alice", Email: "alice@example.com",
						PasswordHash: "h123", Role: models.RoleUser, Confirmed: true,
					}))
			},
			wantUser: &models.User{
				ID: 7, Username: "alice", Email: "alice@example.com",
				PasswordHash: "h123", Role: models.RoleUser, Confirmed: true,
			},
		},
		{
			name:  "not found (ErrNoRows)",
			email: "missing@example.com",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectUserByEmailSQL)).
					WithArgs("missing@example.com").
					WillReturnError(sql.ErrNoRows)
			},
			wantUser: nil,
		},
		{
			name:  "query error",
			email: "bob@example.com",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectUserByEmailSQL)).
					WithArgs("bob@example.com").
					WillReturnError(errors.New("db query failed"))
			},
			wantErr:        true,
			errContainsStr: "select user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockUserRepo(t)
			defer cleanup()

			tt.mockExpect(mock)

			u, err := repo.GetByEmail(context.Background(), tt.email)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.errContainsStr != "" && !contains(err.Error(), tt.errContainsStr) {
					t.Fatalf("expected error to contain %q, got %q", tt.errContainsStr, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantUser == nil {
				if u != nil {
					t.Fatalf("expected nil user, got %+v", u)
				}
				return
			}
			if u == nil {
				t.Fatalf("expected user, got nil")
			}
			if u.ID != tt.wantUser.ID || u.Email != tt.wantUser.Email || u.Role != tt.wantUser.Role || u.Confirmed != tt.wantUser.Confirmed {
				t.Fatalf("unexpected user: want %+v, got %+v", tt.wantUser, u)
			}
		})
	}
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name           string
		params         CreateUserParams
		mockExpect     func(sqlmock.Sqlmock)
		wantID         int
		wantErr        bool
		errContainsStr string
	}{
		{
			name:   "success",
			params: CreateUserParams{Username: "alice", Email: "alice@example.com", PasswordHash: "h123"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("alice", "alice@example.com", "h123", nil, string(models.RoleUser), false).
					WillReturnResult(sqlmock.NewResult(42, 1))
			},
			wantID: 42,
		},
		{
			name:   "exec error",
			params: CreateUserParams{Username: "bob", Email: "bob@example.com", PasswordHash: "h456"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("bob", "bob@example.com", "h456", nil, string(models.RoleUser), false).
					WillReturnError(errors.New("db exec failed"))
			},
			wantErr:        true,
			errContainsStr: "insert user",
		},
		{
			name:   "last insert id error",
			params: CreateUserParams{Username: "carol", Email: "carol@example.com", PasswordHash: "h789"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
					WithArgs("carol", "carol@example.com", "h789", nil, string(models.RoleUser), false).
					WillReturnResult(sqlmock.NewErrorResult(errors.New("no last id")))
			},
			wantErr:        true,
			errContainsStr: "get last insert id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockUserRepo(t)
			defer cleanup()

			tt.mockExpect(mock)

			u, err := repo.Create(context.Background(), tt.params)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.errContainsStr != "" && !contains(err.Error(), tt.errContainsStr) {
					t.Fatalf("expected error to contain %q, got %q", tt.errContainsStr, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if u.ID != tt.wantID {
				t.Fatalf("unexpected id: want %d, got %d", tt.wantID, u.ID)
			}
			if u.Confirmed {
				t.Fatalf("new user must start unconfirmed")
			}
			if u.Role != models.RoleUser {
				t.Fatalf("new user must get the default role, got %q", u.Role)
			}
		})
	}
}

func TestUserRepository_UpdateRefreshToken(t *testing.T) {
	repo, mock, cleanup := newMockUserRepo(t)
	defer cleanup()

	token := "refresh-token"
	mock.ExpectExec(regexp.QuoteMeta(updateRefreshTokenSQL)).
		WithArgs(&token, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateRefreshToken(context.Background(), 7, &token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// nil clears the stored token
	mock.ExpectExec(regexp.QuoteMeta(updateRefreshTokenSQL)).
		WithArgs(nil, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateRefreshToken(context.Background(), 7, nil); err != nil {
		t.Fatalf("unexpected error clearing token: %v", err)
	}
}

func TestUserRepository_ConfirmEmail(t *testing.T) {
	repo, mock, cleanup := newMockUserRepo(t)
	defer cleanup()

	// confirming twice issues the same idempotent update both times
	for i := 0; i < 2; i++ {
		mock.ExpectExec(regexp.QuoteMeta(confirmUserSQL)).
			WithArgs("alice@example.com").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	for i := 0; i < 2; i++ {
		if err := repo.ConfirmEmail(context.Background(), "alice@example.com"); err != nil {
			t.Fatalf("confirm attempt %d: unexpected error: %v", i+1, err)
		}
	}
}

func TestUserRepository_UpdateAvatar(t *testing.T) {
	repo, mock, cleanup := newMockUserRepo(t)
	defer cleanup()

	url := "https://res.example.com/avatar.png"
	mock.ExpectExec(regexp.QuoteMeta(updateAvatarSQL)).
		WithArgs(url, "alice@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectUserByEmailSQL)).
		WithArgs("alice@example.com").
		WillReturnRows(userRows(models.User{
			ID: 7, Username: "alice", Email: "alice@example.com",
			PasswordHash: "h123", Avatar: &url, Role: models.RoleUser, Confirmed: true,
		}))

	u, err := repo.UpdateAvatar(context.Background(), "alice@example.com", url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u == nil || u.Avatar == nil || *u.Avatar != url {
		t.Fatalf("expected avatar %q, got %+v", url, u)
	}
}

func contains(s, substr string) bool {
	return len(substr) == 0 || (len(s) >= len(substr) && regexp.MustCompile(regexp.QuoteMeta(substr)).FindStringIndex(s) != nil)
}
