package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type failingStudyRepo struct {
	*mockStudyRepo
	createErr error
}

func (r *failingStudyRepo) Create(ctx context.Context, s *Study) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.mockStudyRepo.Create(ctx, s)
}

func postStudy(h *Handler, body string) error {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/studies", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return h.CreateStudy(e.NewContext(req, rec))
}

func TestHandlerCreateStudy_ValidationIs400(t *testing.T) {
	h := NewHandler(NewService(newMockStudyRepo(), newMockPlanRepo()))

	err := postStudy(h, `{"determinacion":"Glucemia"}`)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing codigo, got %v", err)
	}
}

func TestHandlerCreateStudy_StorageFailureIs500(t *testing.T) {
	repo := &failingStudyRepo{
		mockStudyRepo: newMockStudyRepo(),
		createErr:     errors.New("connection refused"),
	}
	h := NewHandler(NewService(repo, newMockPlanRepo()))

	err := postStudy(h, `{"codigo":450,"determinacion":"Glucemia","ub":3}`)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %v", err)
	}
	if he.Code != http.StatusInternalServerError {
		t.Errorf("storage failure must not surface as client error: got %d, want 500", he.Code)
	}
}

func TestHandlerCreatePlan_DuplicateNombreIs400(t *testing.T) {
	plans := newMockPlanRepo()
	h := NewHandler(NewService(newMockStudyRepo(), plans))

	if err := plans.Create(context.Background(), &Plan{Nombre: "OSDE", NBU: 100}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", strings.NewReader(`{"nombre":"OSDE","nbu":200}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	err := h.CreatePlan(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate nombre, got %v", err)
	}
}
