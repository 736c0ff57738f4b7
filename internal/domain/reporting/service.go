package reporting

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
	clock  func() time.Time
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger, clock: time.Now}
}

func (s *Service) Dashboard(ctx context.Context) (*Summary, error) {
	return s.repo.Summary(ctx, s.clock())
}
