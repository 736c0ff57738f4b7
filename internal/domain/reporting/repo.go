package reporting

import (
	"context"
	"time"
)

// Repository aggregates counts across the core entities.
type Repository interface {
	Summary(ctx context.Context, now time.Time) (*Summary, error)
}
