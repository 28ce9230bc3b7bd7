package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dmytro-Kruhlov/hw-web-14/internal/models"
	"github.com/Dmytro-Kruhlov/hw-web-14/internal/service"
)

func TestUserHandlers_Me(t *testing.T) {
	s := &service.Service{Authorization: &mockAuth{user: testUser(models.RoleUser)}}
	r := newTestRouter(s, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header = authHeader("acc")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("me status=%d, body=%s", w.Code, w.Body.String())
	}
	var got models.User
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.ID != 7 || got.Email != "diana@x.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
	// the password hash never leaves the server
	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Fatalf("response leaks password material: %s", w.Body.String())
	}
}

func avatarForm(t *testing.T, field string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile(field, "avatar.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return buf, mw.FormDataContentType()
}

func TestUserHandlers_UpdateAvatar(t *testing.T) {
	hosted := "https://res.cloudinary.com/demo/image/upload/c_fill,h_250,w_250/v1/hw14/abc"
	users := &mockUsers{
		avatarUser: &models.User{ID: 7, Email: "diana@x.com", Avatar: &hosted},
	}
	s := &service.Service{
		Authorization: &mockAuth{user: testUser(models.RoleUser)},
		Users:         users,
	}
	r := newTestRouter(s, nil)

	body, contentType := avatarForm(t, "file")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/users/avatar", body)
	req.Header = authHeader("acc")
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("avatar status=%d, body=%s", w.Code, w.Body.String())
	}
	var got models.User
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Avatar == nil || *got.Avatar != hosted {
		t.Fatalf("avatar URL missing from response: %+v", got)
	}
	if users.lastAvatarEmail != "diana@x.com" {
		t.Fatalf("email not forwarded, got %q", users.lastAvatarEmail)
	}
}

func TestUserHandlers_UpdateAvatar_MissingFile(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{user: testUser(models.RoleUser)},
		Users:         &mockUsers{},
	}
	r := newTestRouter(s, nil)

	// wrong form field name
	body, contentType := avatarForm(t, "image")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/users/avatar", body)
	req.Header = authHeader("acc")
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
	}
}
