package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/brightsmile/dental-api/internal/model"
	"github.com/brightsmile/dental-api/internal/service/appointment"
)

// Step names the wizard's linear sequence. Forward movement is gated on
// the current step's required fields; backward movement is always allowed
// and never discards data entered in later steps.
type Step string

const (
	StepService      Step = "service"
	StepPractitioner Step = "practitioner"
	StepDateTime     Step = "datetime"
	StepContact      Step = "contact"
)

// ErrStepIncomplete is returned by Next when the current step's required
// fields are missing.
var ErrStepIncomplete = errors.New("current step is incomplete")

// ErrNotAtFinalStep is returned by Submit before the contact step is
// reached and validated.
var ErrNotAtFinalStep = errors.New("wizard has remaining steps")

// Draft is the ephemeral, not-yet-persisted selection. It lives only in
// the wizard; it is discarded on Reset and never partially written.
type Draft struct {
	PatientID        uuid.UUID
	ServiceType      string
	PractitionerName string
	Date             string
	Time             string
	ContactName      string
	ContactEmail     string
	Notes            string
}

type Wizard struct {
	svc   *appointment.Service
	steps []Step
	idx   int
	draft Draft
	done  bool
}

func NewWizard(svc *appointment.Service) *Wizard {
	return &Wizard{
		svc:   svc,
		steps: []Step{StepService, StepPractitioner, StepDateTime, StepContact},
	}
}

func (w *Wizard) Current() Step {
	return w.steps[w.idx]
}

// Draft exposes the in-progress selection for the UI to fill in.
func (w *Wizard) Draft() *Draft {
	return &w.draft
}

func (w *Wizard) Completed() bool {
	return w.done
}

// Next advances to the following step after validating the current one.
// Advancing past the final step is not possible; Submit finishes the flow.
func (w *Wizard) Next() error {
	if err := w.validateStep(w.Current()); err != nil {
		return err
	}
	if w.idx < len(w.steps)-1 {
		w.idx++
	}
	return nil
}

// Back moves to the previous step, reporting false at the first step.
// Later-step data stays in the draft.
func (w *Wizard) Back() bool {
	if w.idx == 0 {
		return false
	}
	w.idx--
	return true
}

// Submit sends the completed draft as an appointment request. On a slot
// conflict the wizard rewinds to the date/time step so the caller can
// re-resolve availability and pick again.
func (w *Wizard) Submit(ctx context.Context) (*model.Appointment, error) {
	if w.Current() != StepContact {
		return nil, ErrNotAtFinalStep
	}
	for _, step := range w.steps {
		if err := w.validateStep(step); err != nil {
			return nil, err
		}
	}

	apt, err := w.svc.RequestAppointment(ctx, &model.CreateAppointmentRequest{
		PatientID:        w.draft.PatientID,
		ServiceType:      w.draft.ServiceType,
		PractitionerName: w.draft.PractitionerName,
		Date:             w.draft.Date,
		Time:             w.draft.Time,
		Notes:            w.draft.Notes,
	})
	if err != nil {
		if errors.Is(err, appointment.ErrSlotConflict) {
			w.rewindTo(StepDateTime)
		}
		return nil, err
	}

	w.done = true
	return apt, nil
}

// Reset discards the draft and returns to the first step.
func (w *Wizard) Reset() {
	w.idx = 0
	w.draft = Draft{}
	w.done = false
}

func (w *Wizard) validateStep(step Step) error {
	switch step {
	case StepService:
		if w.draft.ServiceType == "" {
			return fmt.Errorf("%w: service is required", ErrStepIncomplete)
		}
	case StepPractitioner:
		if w.draft.PractitionerName == "" {
			return fmt.Errorf("%w: practitioner is required", ErrStepIncomplete)
		}
	case StepDateTime:
		if w.draft.Date == "" || w.draft.Time == "" {
			return fmt.Errorf("%w: date and time are required", ErrStepIncomplete)
		}
	case StepContact:
		if w.draft.ContactName == "" || w.draft.ContactEmail == "" {
			return fmt.Errorf("%w: contact details are required", ErrStepIncomplete)
		}
	}
	return nil
}

func (w *Wizard) rewindTo(step Step) {
	for i, s := range w.steps {
		if s == step {
			w.idx = i
			return
		}
	}
}
