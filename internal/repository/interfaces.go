package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/brightsmile/dental-api/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// All repository interfaces in one file
type (
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ListLive returns appointments that still occupy a slot for the
		// practitioner on the given date, ordered by time of day as stored.
		ListLive(ctx context.Context, practitionerName, date string) ([]*model.Appointment, error)
		// HasLiveConflict reports whether another live appointment holds the
		// (practitioner, date, time) slot. excludeID skips the record being
		// reassigned.
		HasLiveConflict(ctx context.Context, practitionerName, date, timeOfDay string, excludeID *uuid.UUID) (bool, error)
	}

	SlotCatalogRepository interface {
		// GetTimes returns the ordered candidate times for the practitioner
		// on the date, or an empty slice when no catalog entry exists.
		GetTimes(ctx context.Context, practitionerName, date string) ([]string, error)
		Upsert(ctx context.Context, entry *model.SlotCatalogEntry) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	PractitionerRepository interface {
		Create(ctx context.Context, practitioner *model.Practitioner) error
		GetByName(ctx context.Context, name string) (*model.Practitioner, error)
		List(ctx context.Context) ([]*model.Practitioner, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	}

	AdminRepository interface {
		GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	}
)
