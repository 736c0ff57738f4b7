// Package scheduling owns appointment records and the slot-conflict rule:
// at most one non-cancelled appointment may exist per exact start time.
package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/ElBenerDev/CRM/internal/platform/apperr"
)

// Service types offered by the practice.
const (
	ServiceConsultation = "CONSULTATION"
	ServiceCleaning     = "CLEANING"
	ServiceTreatment    = "TREATMENT"
)

// Appointment statuses. SCHEDULED is the initial state; PENDING is an
// alternate open state with the same slot-blocking behavior. COMPLETED and
// CANCELLED are terminal in the normal flow, though cancel is permitted
// from any status.
const (
	StatusScheduled = "SCHEDULED"
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// DefaultDurationMinutes applies when a booking omits the duration.
const DefaultDurationMinutes = 30

var validServiceTypes = map[string]bool{
	ServiceConsultation: true,
	ServiceCleaning:     true,
	ServiceTreatment:    true,
}

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusPending:   true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// openStatuses are the states that occupy a slot.
var openStatuses = []string{StatusScheduled, StatusPending}

// Appointment maps to the appointment table.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	ServiceType     string    `db:"service_type" json:"service_type"`
	Status          string    `db:"status" json:"status"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedBy       *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// AppointmentUpdate carries a partial update. Nil fields are left untouched.
type AppointmentUpdate struct {
	StartTime       *time.Time `json:"start_time"`
	DurationMinutes *int       `json:"duration_minutes"`
	ServiceType     *string    `json:"service_type"`
	Status          *string    `json:"status"`
	Notes           *string    `json:"notes"`
}

// Filter narrows a listing. Nil fields are ignored.
type Filter struct {
	PatientID *uuid.UUID
	Status    *string
	From      *time.Time
	To        *time.Time
}

// Open reports whether the appointment occupies its slot.
func (a *Appointment) Open() bool {
	return a.Status == StatusScheduled || a.Status == StatusPending
}

// Validate enforces the scheduling rules and applies defaults.
func (a *Appointment) Validate() error {
	if a.PatientID == uuid.Nil {
		return apperr.Validationf("patient_id is required")
	}
	if a.StartTime.IsZero() {
		return apperr.Validationf("start_time is required")
	}
	if a.DurationMinutes == 0 {
		a.DurationMinutes = DefaultDurationMinutes
	}
	if a.DurationMinutes < 0 {
		return apperr.Validationf("duration_minutes must be positive")
	}
	if a.ServiceType == "" {
		return apperr.Validationf("service_type is required")
	}
	if !validServiceTypes[a.ServiceType] {
		return apperr.Validationf("invalid service type: %s", a.ServiceType)
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validStatuses[a.Status] {
		return apperr.Validationf("invalid appointment status: %s", a.Status)
	}
	return nil
}
