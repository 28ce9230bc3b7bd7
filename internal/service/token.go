package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenScope discriminates what a token may be used for. A token presented
// for the wrong scope is rejected outright.
type TokenScope string

const (
	ScopeAccess  TokenScope = "access_token"
	ScopeRefresh TokenScope = "refresh_token"
	ScopeEmail   TokenScope = "email_token"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
	defaultEmailTTL   = 7 * 24 * time.Hour
)

// ErrInvalidToken covers bad signature, expiry, and scope mismatch alike.
var ErrInvalidToken = errors.New("invalid token")

// TokenConfig is read from config at startup; zero TTLs fall back to the
// defaults above.
type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	EmailTTL   time.Duration
}

// TokenManager issues and validates the three token kinds with a single
// signing secret. The secret is injected, never package state.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration
}

func NewTokenManager(cfg TokenConfig) *TokenManager {
	m := &TokenManager{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		emailTTL:   cfg.EmailTTL,
	}
	if m.accessTTL <= 0 {
		m.accessTTL = defaultAccessTTL
	}
	if m.refreshTTL <= 0 {
		m.refreshTTL = defaultRefreshTTL
	}
	if m.emailTTL <= 0 {
		m.emailTTL = defaultEmailTTL
	}
	return m
}

// Claims defines JWT claims: subject email plus the scope discriminator.
type Claims struct {
	jwt.RegisteredClaims
	Scope TokenScope `json:"scope"`
}

func (m *TokenManager) ttlFor(scope TokenScope) time.Duration {
	switch scope {
	case ScopeRefresh:
		return m.refreshTTL
	case ScopeEmail:
		return m.emailTTL
	default:
		return m.accessTTL
	}
}

// Issue signs a token for subject (the user's email) in the given scope.
func (m *TokenManager) Issue(subject string, scope TokenScope) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttlFor(scope))),
			ID:        uuid.NewString(),
		},
		Scope: scope,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", scope, err)
	}
	return signed, nil
}

// Parse validates the signature, expiry and scope, and returns the subject.
func (m *TokenManager) Parse(tokenStr string, scope TokenScope) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Scope != scope {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
