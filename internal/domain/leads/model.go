// Package leads tracks sales prospects through the status funnel
// NEW -> CONTACTED -> QUALIFIED -> CONVERTED / LOST. The funnel order is a
// convention only; any status may move to any other.
package leads

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/ElBenerDev/CRM/internal/platform/apperr"
)

const (
	StatusNew       = "NEW"
	StatusContacted = "CONTACTED"
	StatusQualified = "QUALIFIED"
	StatusConverted = "CONVERTED"
	StatusLost      = "LOST"
)

var validStatuses = map[string]bool{
	StatusNew:       true,
	StatusContacted: true,
	StatusQualified: true,
	StatusConverted: true,
	StatusLost:      true,
}

// Lead maps to the lead table.
type Lead struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Email         *string    `db:"email" json:"email,omitempty"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	Status        string     `db:"status" json:"status"`
	Source        *string    `db:"source" json:"source,omitempty"`
	ExpectedValue *float64   `db:"expected_value" json:"expected_value,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	PatientID     *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// LeadUpdate carries a partial update. Nil fields are left untouched.
type LeadUpdate struct {
	Name          *string    `json:"name"`
	Email         *string    `json:"email"`
	Phone         *string    `json:"phone"`
	Source        *string    `json:"source"`
	ExpectedValue *float64   `json:"expected_value"`
	Notes         *string    `json:"notes"`
	PatientID     *uuid.UUID `json:"patient_id"`
}

// Filter narrows a listing. Nil fields are ignored.
type Filter struct {
	Status   *string
	MinValue *float64
	MaxValue *float64
}

// Validate enforces the capture rules, mirroring the patient directory:
// non-blank name, "@" in the email, ten digits in the phone.
func (l *Lead) Validate() error {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return apperr.Validationf("name is required")
	}
	if l.Email != nil && *l.Email != "" && !strings.Contains(*l.Email, "@") {
		return apperr.Validationf("email %q must contain @", *l.Email)
	}
	if l.Phone != nil && *l.Phone != "" {
		digits := 0
		for _, r := range *l.Phone {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		if digits < 10 {
			return apperr.Validationf("phone must contain at least 10 digits")
		}
	}
	if l.Status == "" {
		l.Status = StatusNew
	}
	if !validStatuses[l.Status] {
		return apperr.Validationf("invalid lead status: %s", l.Status)
	}
	if l.ExpectedValue != nil && *l.ExpectedValue < 0 {
		return apperr.Validationf("expected_value must not be negative")
	}
	return nil
}
