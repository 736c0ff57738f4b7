package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ElBenerDev/CRM/internal/platform/apperr"
	"github.com/ElBenerDev/CRM/internal/platform/auth"
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
		logger:    logger.With().Str("component", "scheduling").Logger(),
	}
}

// CreateAppointment books a slot. The patient must resolve, the slot must be
// free of open appointments, and the record gets SCHEDULED status unless an
// explicit valid override is supplied.
func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}

	exists, err := s.patients.PatientExists(ctx, a.PatientID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFoundf("patient %s", a.PatientID)
	}

	if a.CreatedBy == nil {
		if actor := auth.UserIDFromContext(ctx); actor != "" {
			a.CreatedBy = &actor
		}
	}

	if err := s.repo.CreateIfSlotFree(ctx, a); err != nil {
		return err
	}
	s.publish(ctx, events.TypeAppointmentCreated, a)
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, f Filter, orderDesc bool, limit, offset int) ([]*Appointment, int, error) {
	if f.Status != nil && !validStatuses[*f.Status] {
		return nil, 0, apperr.Validationf("invalid appointment status: %s", *f.Status)
	}
	return s.repo.List(ctx, f, orderDesc, limit, offset)
}

// UpdateAppointment applies only the fields present in upd. A start time
// change re-runs the slot-conflict rule when the appointment stays open.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, upd AppointmentUpdate) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	slotChanged := false
	if upd.StartTime != nil && !upd.StartTime.Equal(a.StartTime) {
		a.StartTime = *upd.StartTime
		slotChanged = true
	}
	if upd.DurationMinutes != nil {
		a.DurationMinutes = *upd.DurationMinutes
	}
	if upd.ServiceType != nil {
		a.ServiceType = *upd.ServiceType
	}
	if upd.Status != nil {
		a.Status = *upd.Status
	}
	if upd.Notes != nil {
		a.Notes = upd.Notes
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}

	if slotChanged && a.Open() {
		taken, err := s.repo.ExistsConflicting(ctx, a.StartTime, a.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Conflictf("slot %s is already booked", a.StartTime.Format(time.RFC3339))
		}
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypeAppointmentUpdated, a)
	return a, nil
}

// CancelAppointment moves the appointment to CANCELLED from any prior
// status, freeing its slot. Cancelling a COMPLETED appointment is allowed.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.Status = StatusCancelled
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypeAppointmentCancelled, a)
	return a, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) publish(ctx context.Context, eventType string, a *Appointment) {
	ev := events.New(eventType, events.TopicAppointments, "appointment", a.ID.String(), a)
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("event publish failed")
	}
}
