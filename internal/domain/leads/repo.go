package leads

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, l *Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*Lead, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Lead, int, error)
	Update(ctx context.Context, l *Lead) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PatientDirectory validates the optional patient linkage.
type PatientDirectory interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}
