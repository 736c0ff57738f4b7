// Package directory owns patient identity records. Patients are the leaf
// aggregate the scheduler and lead tracker reference; deleting one is a soft
// delete so appointment history survives.
package directory

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/ElBenerDev/CRM/internal/platform/apperr"
)

// Patient maps to the patient table.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	Address   *string    `db:"address" json:"address,omitempty"`
	Notes     *string    `db:"notes" json:"notes,omitempty"`
	CreatedBy *string    `db:"created_by" json:"created_by,omitempty"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// PatientUpdate carries a partial update. Nil fields are left untouched.
type PatientUpdate struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// Validate enforces the directory rules: name at least two characters after
// trimming, email containing "@" when present, phone carrying at least ten
// digits when present.
func (p *Patient) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if len(p.Name) < 2 {
		return apperr.Validationf("name must be at least 2 characters after trimming")
	}
	if p.Email != nil && *p.Email != "" {
		if err := validateEmail(*p.Email); err != nil {
			return err
		}
	}
	if p.Phone != nil && *p.Phone != "" {
		if err := validatePhone(*p.Phone); err != nil {
			return err
		}
	}
	return nil
}

func validateEmail(email string) error {
	if !strings.Contains(email, "@") {
		return apperr.Validationf("email %q must contain @", email)
	}
	return nil
}

func validatePhone(phone string) error {
	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < 10 {
		return apperr.Validationf("phone must contain at least 10 digits")
	}
	return nil
}
