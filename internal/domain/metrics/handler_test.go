package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/firstembrace/kmc/internal/domain/records"
)

func newTestHandler(repo *mockRepo) (*Handler, *echo.Echo) {
	return NewHandler(newTestService(repo)), echo.New()
}

func TestHandler_Registration(t *testing.T) {
	birth := clin(2024, 3, 1, 8, 0)
	repo := &mockRepo{bundle: &records.Bundle{
		Primary: []records.Baby{{
			UID: "a", Hospital: "H1",
			PlaceOfDelivery: strp("this hospital"),
			BirthDate:       timep(birth),
			RegisteredAt:    timep(birth.Add(4 * hour)),
		}},
	}}
	h, e := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/registration", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Registration(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var out RegistrationTimeliness
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if out.TotalInborn != 1 || out.Within12h != 1 {
		t.Errorf("got %+v", out)
	}
}

func TestHandler_BadFromDate(t *testing.T) {
	h, e := newTestHandler(&mockRepo{bundle: &records.Bundle{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/mortality?from=not-a-date", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Mortality(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_QueryFilters(t *testing.T) {
	_, e := newTestHandler(&mockRepo{bundle: &records.Bundle{}})

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/analytics/dashboard?from=2024-03-01&to=2024-03-31&hospital=H1,H2&hospital=H3&uid=a", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	q, err := parseQuery(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.From == nil || q.To == nil {
		t.Fatal("window bounds missing")
	}
	if len(q.Hospitals) != 3 || q.Hospitals[2] != "H3" {
		t.Errorf("hospitals = %v", q.Hospitals)
	}
	if len(q.UIDs) != 1 || q.UIDs[0] != "a" {
		t.Errorf("uids = %v", q.UIDs)
	}
	_ = rec
}

func TestHandler_RepoFailure(t *testing.T) {
	h, e := newTestHandler(&mockRepo{err: errTest})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Dashboard(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %v", err)
	}
}

func TestHandler_InvalidateCache(t *testing.T) {
	h, e := newTestHandler(&mockRepo{bundle: &records.Bundle{}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analytics/cache/invalidate", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.InvalidateCache(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
