package reporting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	summary *Summary
	gotNow  time.Time
}

func (m *mockRepo) Summary(_ context.Context, now time.Time) (*Summary, error) {
	m.gotNow = now
	return m.summary, nil
}

func TestDashboard(t *testing.T) {
	repo := &mockRepo{summary: &Summary{
		TotalPatients:     12,
		AppointmentsToday: 3,
		OpenAppointments:  5,
		LeadsByStatus:     map[string]int{"NEW": 4, "CONTACTED": 2},
	}}
	svc := NewService(repo, zerolog.Nop())
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return fixed }

	got, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if got.TotalPatients != 12 || got.OpenAppointments != 5 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if got.LeadsByStatus["NEW"] != 4 {
		t.Fatalf("expected 4 NEW leads, got %d", got.LeadsByStatus["NEW"])
	}
	if !repo.gotNow.Equal(fixed) {
		t.Fatalf("repo received wrong clock value: %v", repo.gotNow)
	}
}

func TestHandler_Dashboard(t *testing.T) {
	repo := &mockRepo{summary: &Summary{
		TotalPatients: 1,
		LeadsByStatus: map[string]int{},
	}}
	h := NewHandler(NewService(repo, zerolog.Nop()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Dashboard(c); err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var s Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if s.TotalPatients != 1 {
		t.Fatalf("expected 1 patient, got %d", s.TotalPatients)
	}
}
