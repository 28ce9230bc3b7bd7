package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/logger"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/models"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/repository"
)

// Domain errors for auth flows.
var (
	ErrEmailExists         = errors.New("account already exists")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrEmailNotConfirmed   = errors.New("email not confirmed")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrVerificationFailed  = errors.New("verification error")
	ErrUserNotFound        = errors.New("user not found")
)

// How long a resolved user may be served from cache before the directory
// is consulted again.
const userCacheTTL = 5 * time.Second

// AuthService handles signup, login, token rotation, email confirmation
// and current-user resolution for the access gate.
type AuthService struct {
	users   repository.Users
	tokens  *TokenManager
	mailer  EmailSender
	cache   UserCache
	baseURL string
	log     *logger.Logger
}

func NewAuthService(users repository.Users, tokens *TokenManager, mailer EmailSender, cache UserCache, baseURL string, log *logger.Logger) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		mailer:  mailer,
		cache:   cache,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

var _ Authorization = (*AuthService)(nil)

// SignUp hashes the password, creates the user unconfirmed, and sends the
// confirmation email in the background.
func (s *AuthService) SignUp(ctx context.Context, p SignUpParams) (*models.User, error) {
	existing, err := s.users.GetByEmail(ctx, p.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := hashPassword(p.Password)
	if err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	user, err := s.users.Create(ctx, repository.CreateUserParams{
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	s.sendConfirmation(user.Email, user.Username)
	return user, nil
}

// Login validates credentials and issues a fresh token pair. Unconfirmed
// accounts are rejected even with the correct password.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, err
	}
	if user == nil {
		return TokenPair{}, ErrInvalidEmail
	}
	if !user.Confirmed {
		return TokenPair{}, ErrEmailNotConfirmed
	}
	if err := verifyPassword(user.PasswordHash, password); err != nil {
		return TokenPair{}, ErrInvalidPassword
	}
	return s.issuePair(ctx, user)
}

// Refresh exchanges a valid refresh token for a rotated pair. A token that
// does not match the stored one revokes the stored token and fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	email, err := s.tokens.Parse(refreshToken, ScopeRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, err
	}
	if user == nil {
		return TokenPair{}, ErrInvalidRefreshToken
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		// a stale or stolen token: drop the stored one so it can't be replayed
		if uerr := s.users.UpdateRefreshToken(ctx, user.ID, nil); uerr != nil {
			return TokenPair{}, uerr
		}
		return TokenPair{}, ErrInvalidRefreshToken
	}
	return s.issuePair(ctx, user)
}

// Logout drops the stored refresh token.
func (s *AuthService) Logout(ctx context.Context, userID int) error {
	return s.users.UpdateRefreshToken(ctx, userID, nil)
}

// ConfirmEmail resolves the emailed token and flips the confirmed flag.
// Idempotent: confirming twice reports alreadyConfirmed without error.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	email, err := s.tokens.Parse(token, ScopeEmail)
	if err != nil {
		return false, ErrVerificationFailed
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, ErrVerificationFailed
	}
	if user.Confirmed {
		return true, nil
	}
	return false, s.users.ConfirmEmail(ctx, email)
}

// RequestConfirmation re-sends the confirmation link for an existing
// unconfirmed account. It never reveals whether the email is registered.
func (s *AuthService) RequestConfirmation(ctx context.Context, email string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	if user.Confirmed {
		return true, nil
	}
	s.sendConfirmation(user.Email, user.Username)
	return false, nil
}

// CurrentUser resolves the bearer access token to its user, consulting the
// short-lived cache first.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	email, err := s.tokens.Parse(accessToken, ScopeAccess)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, cerr := s.cache.GetUser(ctx, email); cerr == nil && cached != nil {
			return cached, nil
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if s.cache != nil {
		if cerr := s.cache.SetUser(ctx, user, userCacheTTL); cerr != nil && s.log != nil {
			s.log.Infow("user_cache_set_failed", "email", email, "err", cerr)
		}
	}
	return user, nil
}

// issuePair signs a new access+refresh pair and persists the refresh token.
func (s *AuthService) issuePair(ctx context.Context, user *models.User) (TokenPair, error) {
	access, err := s.tokens.Issue(user.Email, ScopeAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.Issue(user.Email, ScopeRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.users.UpdateRefreshToken(ctx, user.ID, &refresh); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// sendConfirmation issues the email-scope token and dispatches the mail in
// the background; delivery failures are logged, never surfaced.
func (s *AuthService) sendConfirmation(email, username string) {
	if s.mailer == nil {
		return
	}
	token, err := s.tokens.Issue(email, ScopeEmail)
	if err != nil {
		if s.log != nil {
			s.log.Errorw("confirmation_token_issue_failed", "email", email, "err", err)
		}
		return
	}
	confirmURL := s.baseURL + "/auth/confirmed_email/" + token

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mailer.SendConfirmationEmail(ctx, email, username, confirmURL); err != nil && s.log != nil {
			s.log.Errorw("confirmation_email_failed", "email", email, "err", err)
		}
	}()
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
