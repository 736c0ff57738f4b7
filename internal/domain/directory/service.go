package directory

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ElBenerDev/CRM/internal/platform/auth"
	"github.com/ElBenerDev/CRM/internal/platform/events"
)

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    zerolog.Logger
}

func NewService(repo Repository, publisher events.Publisher, logger zerolog.Logger) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With().Str("component", "directory").Logger(),
	}
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.CreatedBy == nil {
		if actor := auth.UserIDFromContext(ctx); actor != "" {
			p.CreatedBy = &actor
		}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.publish(ctx, events.TypePatientCreated, p)
	return nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, search, limit, offset)
}

// UpdatePatient applies only the fields present in upd, re-validating the
// result with the creation rules.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, upd PatientUpdate) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Email != nil {
		p.Email = upd.Email
	}
	if upd.Phone != nil {
		p.Phone = upd.Phone
	}
	if upd.Address != nil {
		p.Address = upd.Address
	}
	if upd.Notes != nil {
		p.Notes = upd.Notes
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypePatientUpdated, p)
	return p, nil
}

// DeletePatient marks the record deleted. Appointments referencing the
// patient are preserved.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.TypePatientDeleted, &Patient{ID: id})
	return nil
}

// PatientExists reports whether a non-deleted patient with the id exists.
// The scheduler and lead tracker use it for referential checks.
func (s *Service) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *Service) publish(ctx context.Context, eventType string, p *Patient) {
	ev := events.New(eventType, events.TopicPatients, "patient", p.ID.String(), p)
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("event publish failed")
	}
}
