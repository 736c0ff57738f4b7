package scheduling

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestHandler() (*Handler, uuid.UUID) {
	repo := newMockRepo()
	patientID := uuid.New()
	patients := &mockPatients{known: map[uuid.UUID]bool{patientID: true}}
	svc := NewService(repo, patients, nil, zerolog.Nop())
	return NewHandler(svc), patientID
}

func doJSON(e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func TestHandler_CreateAppointment_CompactTimestamp(t *testing.T) {
	h, patientID := newTestHandler()
	e := echo.New()

	body := fmt.Sprintf(`{"patient_id":%q,"start_time":"2026-03-01T10:00","service_type":"CONSULTATION"}`, patientID)
	rec, c := doJSON(e, http.MethodPost, "/appointments", body)

	if err := h.CreateAppointment(c); err != nil {
		t.Fatalf("CreateAppointment returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var a Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Fatalf("expected SCHEDULED, got %s", a.Status)
	}
	if a.DurationMinutes != 30 {
		t.Fatalf("expected default duration 30, got %d", a.DurationMinutes)
	}
}

func TestHandler_CreateAppointment_DateTimePair(t *testing.T) {
	h, patientID := newTestHandler()
	e := echo.New()

	body := fmt.Sprintf(`{"patient_id":%q,"date":"2026-03-01","time":"10:00","service_type":"CLEANING"}`, patientID)
	rec, c := doJSON(e, http.MethodPost, "/appointments", body)

	if err := h.CreateAppointment(c); err != nil {
		t.Fatalf("CreateAppointment returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_CreateAppointment_UnparseableDate(t *testing.T) {
	h, patientID := newTestHandler()
	e := echo.New()

	body := fmt.Sprintf(`{"patient_id":%q,"start_time":"tomorrow at noon","service_type":"CONSULTATION"}`, patientID)
	_, c := doJSON(e, http.MethodPost, "/appointments", body)

	err := h.CreateAppointment(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unparseable date, got %v", err)
	}
}

func TestHandler_CreateAppointment_ConflictIs409(t *testing.T) {
	h, patientID := newTestHandler()
	e := echo.New()

	body := fmt.Sprintf(`{"patient_id":%q,"start_time":"2026-03-01T10:00","service_type":"CONSULTATION"}`, patientID)

	_, c := doJSON(e, http.MethodPost, "/appointments", body)
	if err := h.CreateAppointment(c); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	_, c = doJSON(e, http.MethodPost, "/appointments", body)
	err := h.CreateAppointment(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for double booking, got %v", err)
	}
}

func TestHandler_CreateAppointment_UnknownPatientIs404(t *testing.T) {
	h, _ := newTestHandler()
	e := echo.New()

	body := fmt.Sprintf(`{"patient_id":%q,"start_time":"2026-03-01T10:00","service_type":"CONSULTATION"}`, uuid.New())
	_, c := doJSON(e, http.MethodPost, "/appointments", body)

	err := h.CreateAppointment(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown patient, got %v", err)
	}
}

func TestHandler_CancelAppointment(t *testing.T) {
	h, patientID := newTestHandler()
	e := echo.New()

	body := fmt.Sprintf(`{"patient_id":%q,"start_time":"2026-03-01T10:00","service_type":"TREATMENT"}`, patientID)
	rec, c := doJSON(e, http.MethodPost, "/appointments", body)
	if err := h.CreateAppointment(c); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	var created Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec, c = doJSON(e, http.MethodPost, "/appointments/"+created.ID.String()+"/cancel", "")
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	if err := h.CancelAppointment(c); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	var cancelled Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &cancelled); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}
}

func TestHandler_ListAppointments_Filters(t *testing.T) {
	h, patientID := newTestHandler()
	e := echo.New()

	for _, ts := range []string{"2026-03-01T09:00", "2026-03-01T10:00"} {
		body := fmt.Sprintf(`{"patient_id":%q,"start_time":%q,"service_type":"CONSULTATION"}`, patientID, ts)
		_, c := doJSON(e, http.MethodPost, "/appointments", body)
		if err := h.CreateAppointment(c); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	rec, c := doJSON(e, http.MethodGet, "/appointments?patient_id="+patientID.String()+"&status=SCHEDULED&order=desc", "")
	if err := h.ListAppointments(c); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	var resp struct {
		Data  []Appointment `json:"data"`
		Total int           `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || len(resp.Data) != 2 {
		t.Fatalf("expected 2 appointments, got %+v", resp)
	}
	if !resp.Data[0].StartTime.After(resp.Data[1].StartTime) {
		t.Fatal("expected descending order")
	}
}
