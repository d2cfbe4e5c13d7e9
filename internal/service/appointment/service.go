package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/brightsmile/dental-api/internal/model"
	"github.com/brightsmile/dental-api/internal/repository"
	"github.com/brightsmile/dental-api/internal/service/notification"
	"github.com/brightsmile/dental-api/pkg/messaging"
)

// TopicAppointments carries appointment change events. Payloads are
// re-read triggers only.
const TopicAppointments = "appointments"

const (
	EventAppointmentRequested = "appointment.requested"
	EventAppointmentScheduled = "appointment.scheduled"
	EventAppointmentAssigned  = "appointment.assigned"
	EventAppointmentConfirmed = "appointment.confirmed"
	EventAppointmentCancelled = "appointment.cancelled"
	EventAppointmentCompleted = "appointment.completed"
	EventAppointmentNoShow    = "appointment.no_show"
)

// Service is the authoritative state machine for appointment status and
// the single write path for appointment mutations. Every mutating
// operation re-reads the current row immediately before validating, so
// each call acts on the freshest snapshot it can observe; true mutual
// exclusion against concurrent writers comes from the storage layer's
// unique live-slot index, not from this service.
type Service struct {
	repo     repository.AppointmentRepository
	outbox   repository.OutboxRepository
	resolver *Resolver
	notifier notification.Notifier
	broker   messaging.Broker
}

func NewService(
	repo repository.AppointmentRepository,
	outbox repository.OutboxRepository,
	resolver *Resolver,
	notifier notification.Notifier,
	broker messaging.Broker,
) *Service {
	return &Service{
		repo:     repo,
		outbox:   outbox,
		resolver: resolver,
		notifier: notifier,
		broker:   broker,
	}
}

// RequestAppointment creates a patient-submitted booking request in
// pending_confirmation. When a practitioner was chosen, availability is
// re-resolved so a slot taken since the wizard rendered fails with
// ErrSlotConflict before anything is written.
func (s *Service) RequestAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if req.Date == "" || req.Time == "" {
		return nil, ErrInvalidDate
	}
	if err := validateBookableDate(req.Date); err != nil {
		return nil, err
	}

	if req.PractitionerName != "" {
		open, err := s.resolver.ResolveAvailableSlots(ctx, req.Date, req.PractitionerName)
		if err != nil {
			return nil, err
		}
		if !containsSlot(open, req.Time) {
			return nil, ErrSlotConflict
		}
	}

	now := time.Now()
	apt := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PatientID:        req.PatientID,
		PractitionerName: req.PractitionerName,
		ServiceType:      req.ServiceType,
		Date:             req.Date,
		Time:             req.Time,
		Status:           model.AppointmentStatusPendingConfirmation,
		Notes:            req.Notes,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.recordEvent(ctx, EventAppointmentRequested, apt)
	s.notify(ctx, apt, "Appointment Requested",
		fmt.Sprintf("Your %s appointment on %s at %s is awaiting confirmation.", apt.ServiceType, apt.Date, apt.Time))

	return apt, nil
}

// Schedule creates an admin-entered appointment directly in scheduled.
// Unlike patient requests, a practitioner is required up front and the
// conflict check runs against the table rather than the public catalog,
// since the back office may book outside published hours.
func (s *Service) Schedule(ctx context.Context, req *model.ScheduleAppointmentRequest) (*model.Appointment, error) {
	if req.Date == "" || req.Time == "" {
		return nil, ErrInvalidDate
	}
	if err := validateBookableDate(req.Date); err != nil {
		return nil, err
	}
	if req.PractitionerName == "" {
		return nil, ErrPractitionerRequired
	}

	conflict, err := s.repo.HasLiveConflict(ctx, req.PractitionerName, req.Date, req.Time, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot conflict: %w", err)
	}
	if conflict {
		return nil, ErrSlotConflict
	}

	now := time.Now()
	apt := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PatientID:        req.PatientID,
		PractitionerName: req.PractitionerName,
		ServiceType:      req.ServiceType,
		Date:             req.Date,
		Time:             req.Time,
		Status:           model.AppointmentStatusScheduled,
		Notes:            req.Notes,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.recordEvent(ctx, EventAppointmentScheduled, apt)
	s.notify(ctx, apt, "Appointment Scheduled",
		fmt.Sprintf("Your %s appointment is scheduled for %s at %s with %s.", apt.ServiceType, apt.Date, apt.Time, apt.PractitionerName))

	return apt, nil
}

// AssignPractitioner assigns or changes the practitioner on a non-terminal
// appointment. Status is unchanged; the double-booking invariant is
// re-validated for the new practitioner at the record's slot.
func (s *Service) AssignPractitioner(ctx context.Context, id uuid.UUID, practitionerName string) error {
	if practitionerName == "" {
		return ErrPractitionerRequired
	}

	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if apt.Status.IsTerminal() {
		return ErrInvalidTransition
	}

	conflict, err := s.repo.HasLiveConflict(ctx, practitionerName, apt.Date, apt.Time, &apt.ID)
	if err != nil {
		return fmt.Errorf("failed to check slot conflict: %w", err)
	}
	if conflict {
		return ErrSlotConflict
	}

	apt.PractitionerName = practitionerName
	apt.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, apt); err != nil {
		return fmt.Errorf("failed to assign practitioner: %w", err)
	}

	s.recordEvent(ctx, EventAppointmentAssigned, apt)
	s.notify(ctx, apt, "Practitioner Assigned",
		fmt.Sprintf("%s will see you on %s at %s.", practitionerName, apt.Date, apt.Time))

	return nil
}

// Confirm moves a pending_confirmation or scheduled appointment to
// confirmed. A missing practitioner fails with ErrPractitionerRequired
// whatever the current status.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if apt.PractitionerName == "" {
		return ErrPractitionerRequired
	}
	if apt.Status != model.AppointmentStatusPendingConfirmation &&
		apt.Status != model.AppointmentStatusScheduled {
		return ErrInvalidTransition
	}

	apt.Status = model.AppointmentStatusConfirmed
	apt.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, apt); err != nil {
		return fmt.Errorf("failed to confirm appointment: %w", err)
	}

	s.recordEvent(ctx, EventAppointmentConfirmed, apt)
	s.notify(ctx, apt, "Appointment Confirmed",
		fmt.Sprintf("Your appointment on %s at %s is confirmed.", apt.Date, apt.Time))

	return nil
}

// Cancel is permitted from any non-terminal status. It is deliberately
// not idempotent: cancelling an already-cancelled appointment fails with
// ErrInvalidTransition like any other terminal mutation.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if apt.Status.IsTerminal() {
		return ErrInvalidTransition
	}

	apt.Status = model.AppointmentStatusCancelled
	apt.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, apt); err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}

	s.recordEvent(ctx, EventAppointmentCancelled, apt)
	s.notify(ctx, apt, "Appointment Cancelled",
		fmt.Sprintf("Your appointment on %s at %s has been cancelled.", apt.Date, apt.Time))

	return nil
}

// Complete marks a confirmed appointment completed. Guard: the visit date
// must not be in the future.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if apt.Status != model.AppointmentStatusConfirmed {
		return ErrInvalidTransition
	}

	d, err := model.ParseDate(apt.Date)
	if err != nil {
		return ErrInvalidDate
	}
	if d.After(today()) {
		return ErrInvalidTransition
	}

	apt.Status = model.AppointmentStatusCompleted
	apt.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, apt); err != nil {
		return fmt.Errorf("failed to complete appointment: %w", err)
	}

	s.recordEvent(ctx, EventAppointmentCompleted, apt)
	s.notify(ctx, apt, "Visit Completed",
		fmt.Sprintf("Your %s visit on %s is complete. Thank you!", apt.ServiceType, apt.Date))

	return nil
}

// MarkNoShow marks a confirmed or scheduled appointment as a no-show.
// Guard: the visit date must already be in the past.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if apt.Status != model.AppointmentStatusConfirmed &&
		apt.Status != model.AppointmentStatusScheduled {
		return ErrInvalidTransition
	}

	d, err := model.ParseDate(apt.Date)
	if err != nil {
		return ErrInvalidDate
	}
	if !d.Before(today()) {
		return ErrInvalidTransition
	}

	apt.Status = model.AppointmentStatusNoShow
	apt.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, apt); err != nil {
		return fmt.Errorf("failed to mark no-show: %w", err)
	}

	s.recordEvent(ctx, EventAppointmentNoShow, apt)
	s.notify(ctx, apt, "Missed Appointment",
		fmt.Sprintf("You missed your appointment on %s at %s. Please rebook.", apt.Date, apt.Time))

	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Watch invokes onChange whenever an appointment change event is
// published. The event payload is discarded; consumers re-read through
// the repository instead of trusting pushed data.
func (s *Service) Watch(ctx context.Context, onChange func()) error {
	if s.broker == nil {
		return fmt.Errorf("no broker configured")
	}
	return s.broker.Subscribe(ctx, TopicAppointments, func(_ []byte) {
		onChange()
	})
}

func (s *Service) recordEvent(ctx context.Context, eventType string, apt *model.Appointment) {
	if s.outbox == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"appointment_id": apt.ID,
		"status":         apt.Status,
	})
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal outbox payload")
		return
	}

	now := time.Now()
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.outbox.Create(ctx, event); err != nil {
		log.Warn().Err(err).
			Str("event_type", eventType).
			Str("appointment_id", apt.ID.String()).
			Msg("failed to record outbox event")
	}
}

// notify sends exactly one notification per successful transition.
// Delivery failures are logged, never propagated: the transition already
// happened.
func (s *Service) notify(ctx context.Context, apt *model.Appointment, title, message string) {
	if s.notifier == nil {
		return
	}

	n := &model.Notification{
		Title:     title,
		Message:   message,
		Recipient: apt.PatientID.String(),
		Channel:   model.NotificationChannelInApp,
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		log.Error().Err(err).
			Str("appointment_id", apt.ID.String()).
			Str("title", title).
			Msg("failed to deliver notification")
	}
}

func containsSlot(slots []string, timeOfDay string) bool {
	for _, s := range slots {
		if s == timeOfDay {
			return true
		}
	}
	return false
}
