package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateIfSlotFree inserts the appointment only when no open appointment
	// occupies the same start time, failing with apperr.ErrConflict otherwise.
	// The check and insert run atomically.
	CreateIfSlotFree(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, f Filter, orderDesc bool, limit, offset int) ([]*Appointment, int, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ExistsConflicting reports whether an open appointment other than
	// excludeID occupies the slot.
	ExistsConflicting(ctx context.Context, slot time.Time, excludeID uuid.UUID) (bool, error)
}

// PatientDirectory is the referential check the scheduler needs from the
// patient directory.
type PatientDirectory interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}
