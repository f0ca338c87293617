package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/labsuite/labsuite/internal/platform/auth"
)

type failingUserRepo struct {
	*mockRepo
	createErr error
}

func (r *failingUserRepo) Create(ctx context.Context, u *User) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.mockRepo.Create(ctx, u)
}

func postUserAsAdmin(h *Handler, body string) error {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(context.WithValue(req.Context(), auth.UserRoleKey, auth.RoleAdmin))
	rec := httptest.NewRecorder()
	return h.Create(e.NewContext(req, rec))
}

func TestHandlerCreate_ShortPasswordIs400(t *testing.T) {
	h := NewHandler(NewService(newMockRepo(), testJWT))

	err := postUserAsAdmin(h, `{"email":"ana@example.com","name":"Ana","password":"corta","role":"ADMIN"}`)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %v", err)
	}
}

func TestHandlerCreate_StorageFailureIs500(t *testing.T) {
	repo := &failingUserRepo{mockRepo: newMockRepo(), createErr: errors.New("connection refused")}
	h := NewHandler(NewService(repo, testJWT))

	err := postUserAsAdmin(h, `{"email":"ana@example.com","name":"Ana","password":"segura123","role":"ADMIN"}`)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %v", err)
	}
	if he.Code != http.StatusInternalServerError {
		t.Errorf("storage failure must not surface as client error: got %d, want 500", he.Code)
	}
}
