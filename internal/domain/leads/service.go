package leads

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ElBenerDev/CRM/internal/platform/apperr"
	"github.com/ElBenerDev/CRM/internal/platform/events"
)

type Service struct {
	repo      Repository
	patients  PatientDirectory
	publisher events.Publisher
	logger    zerolog.Logger
}

func NewService(repo Repository, patients PatientDirectory, publisher events.Publisher, logger zerolog.Logger) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		repo:      repo,
		patients:  patients,
		publisher: publisher,
		logger:    logger.With().Str("component", "leads").Logger(),
	}
}

// CreateLead captures a prospect. Status defaults to NEW; an optional
// patient linkage must resolve.
func (s *Service) CreateLead(ctx context.Context, l *Lead) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if l.PatientID != nil {
		exists, err := s.patients.PatientExists(ctx, *l.PatientID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFoundf("patient %s", *l.PatientID)
		}
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return err
	}
	s.publish(ctx, events.TypeLeadCreated, l)
	return nil
}

func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (*Lead, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListLeads(ctx context.Context, f Filter, limit, offset int) ([]*Lead, int, error) {
	if f.Status != nil && !validStatuses[*f.Status] {
		return nil, 0, apperr.Validationf("invalid lead status: %s", *f.Status)
	}
	return s.repo.List(ctx, f, limit, offset)
}

// UpdateLead applies only the fields present in upd, re-validating the
// result with the capture rules.
func (s *Service) UpdateLead(ctx context.Context, id uuid.UUID, upd LeadUpdate) (*Lead, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		l.Name = *upd.Name
	}
	if upd.Email != nil {
		l.Email = upd.Email
	}
	if upd.Phone != nil {
		l.Phone = upd.Phone
	}
	if upd.Source != nil {
		l.Source = upd.Source
	}
	if upd.ExpectedValue != nil {
		l.ExpectedValue = upd.ExpectedValue
	}
	if upd.Notes != nil {
		l.Notes = upd.Notes
	}
	if upd.PatientID != nil {
		exists, err := s.patients.PatientExists(ctx, *upd.PatientID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.NotFoundf("patient %s", *upd.PatientID)
		}
		l.PatientID = upd.PatientID
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypeLeadUpdated, l)
	return l, nil
}

// UpdateLeadStatus moves the lead to any member of the status enum. The
// funnel imposes no transition restrictions.
func (s *Service) UpdateLeadStatus(ctx context.Context, id uuid.UUID, status string) (*Lead, error) {
	if !validStatuses[status] {
		return nil, apperr.Validationf("invalid lead status: %s", status)
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	l.Status = status
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypeLeadStatusChanged, l)
	return l, nil
}

func (s *Service) DeleteLead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.TypeLeadDeleted, &Lead{ID: id})
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, l *Lead) {
	ev := events.New(eventType, events.TopicLeads, "lead", l.ID.String(), l)
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("event publish failed")
	}
}
