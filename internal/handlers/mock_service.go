package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/models"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/repository"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/service"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpUser     *models.User
	signUpErr      error
	loginPair      service.TokenPair
	loginErr       error
	refreshPair    service.TokenPair
	refreshErr     error
	logoutErr      error
	confirmAlready bool
	confirmErr     error
	requestAlready bool
	requestErr     error
	user           *models.User // resolved by CurrentUser
	userErr        error

	lastSignUp        service.SignUpParams
	lastLoginEmail    string
	lastLoginPassword string
	lastRefreshToken  string
	lastConfirmToken  string
	lastRequestEmail  string
	logoutCalls       []int
	currentUserCalls  int
}

func (m *mockAuth) SignUp(_ context.Context, p service.SignUpParams) (*models.User, error) {
	m.lastSignUp = p
	return m.signUpUser, m.signUpErr
}

func (m *mockAuth) Login(_ context.Context, email, password string) (service.TokenPair, error) {
	m.lastLoginEmail = email
	m.lastLoginPassword = password
	return m.loginPair, m.loginErr
}

func (m *mockAuth) Refresh(_ context.Context, refreshToken string) (service.TokenPair, error) {
	m.lastRefreshToken = refreshToken
	return m.refreshPair, m.refreshErr
}

func (m *mockAuth) Logout(_ context.Context, userID int) error {
	m.logoutCalls = append(m.logoutCalls, userID)
	return m.logoutErr
}

func (m *mockAuth) ConfirmEmail(_ context.Context, token string) (bool, error) {
	m.lastConfirmToken = token
	return m.confirmAlready, m.confirmErr
}

func (m *mockAuth) RequestConfirmation(_ context.Context, email string) (bool, error) {
	m.lastRequestEmail = email
	return m.requestAlready, m.requestErr
}

func (m *mockAuth) CurrentUser(_ context.Context, _ string) (*models.User, error) {
	m.currentUserCalls++
	return m.user, m.userErr
}

type mockContacts struct {
	listResp      []models.Contact
	listErr       error
	getResp       *models.Contact
	getErr        error
	birthdaysResp []models.Contact
	birthdaysErr  error
	createResp    *models.Contact
	createErr     error
	updateResp    *models.Contact
	updateErr     error
	deleteResp    *models.Contact
	deleteErr     error

	lastOwnerID  int
	lastFilter   repository.ContactFilter
	lastDays     int
	lastCreate   repository.CreateContactParams
	lastUpdateID int
	deleteCalls  []int
}

func (m *mockContacts) List(_ context.Context, ownerID int, f repository.ContactFilter) ([]models.Contact, error) {
	m.lastOwnerID = ownerID
	m.lastFilter = f
	return m.listResp, m.listErr
}

func (m *mockContacts) Get(_ context.Context, id, ownerID int) (*models.Contact, error) {
	m.lastOwnerID = ownerID
	return m.getResp, m.getErr
}

func (m *mockContacts) UpcomingBirthdays(_ context.Context, ownerID, days int) ([]models.Contact, error) {
	m.lastOwnerID = ownerID
	m.lastDays = days
	return m.birthdaysResp, m.birthdaysErr
}

func (m *mockContacts) Create(_ context.Context, p repository.CreateContactParams, ownerID int) (*models.Contact, error) {
	m.lastOwnerID = ownerID
	m.lastCreate = p
	return m.createResp, m.createErr
}

func (m *mockContacts) Update(_ context.Context, id, ownerID int, email, phone string) (*models.Contact, error) {
	m.lastOwnerID = ownerID
	m.lastUpdateID = id
	return m.updateResp, m.updateErr
}

func (m *mockContacts) Delete(_ context.Context, id int) (*models.Contact, error) {
	m.deleteCalls = append(m.deleteCalls, id)
	return m.deleteResp, m.deleteErr
}

type mockUsers struct {
	avatarUser *models.User
	avatarErr  error

	lastAvatarEmail string
}

func (m *mockUsers) UpdateAvatar(_ context.Context, email string, _ io.Reader) (*models.User, error) {
	m.lastAvatarEmail = email
	return m.avatarUser, m.avatarErr
}

// stubLimiter is a RateLimiter with canned answers, recording the keys asked.
type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (l *stubLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allow, l.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, limiter RateLimiter) *gin.Engine {
	h := NewHandler(s, limiter, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func testUser(role models.Role) *models.User {
	return &models.User{ID: 7, Username: "diana", Email: "diana@x.com", Role: role, Confirmed: true}
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
