package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPendingConfirmation AppointmentStatus = "pending_confirmation"
	AppointmentStatusScheduled           AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed           AppointmentStatus = "confirmed"
	AppointmentStatusCompleted           AppointmentStatus = "completed"
	AppointmentStatusCancelled           AppointmentStatus = "cancelled"
	AppointmentStatusNoShow              AppointmentStatus = "no_show"
)

// DateLayout is the calendar-date format used throughout the appointment
// tables. Times of day are stored as the catalog strings (e.g. "9:00 AM")
// and never reinterpreted.
const DateLayout = "2006-01-02"

// LiveStatuses are the statuses that occupy a slot.
func LiveStatuses() []AppointmentStatus {
	return []AppointmentStatus{
		AppointmentStatusPendingConfirmation,
		AppointmentStatusScheduled,
		AppointmentStatusConfirmed,
	}
}

func (s AppointmentStatus) IsLive() bool {
	switch s {
	case AppointmentStatusPendingConfirmation, AppointmentStatusScheduled, AppointmentStatusConfirmed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is permitted.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPendingConfirmation, AppointmentStatusScheduled,
		AppointmentStatusConfirmed, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

type Appointment struct {
	Base
	PatientID        uuid.UUID         `db:"patient_id" json:"patient_id"`
	PractitionerName string            `db:"practitioner_name" json:"practitioner_name"`
	ServiceType      string            `db:"service_type" json:"service_type"`
	Date             string            `db:"visit_date" json:"date"`
	Time             string            `db:"visit_time" json:"time"`
	Status           AppointmentStatus `db:"status" json:"status"`
	Notes            string            `db:"notes" json:"notes,omitempty"`
}

// Validate rejects malformed rows at the persistence boundary before they
// reach the lifecycle manager.
func (a *Appointment) Validate() error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient ID is required")
	}
	if !a.Status.Valid() {
		return fmt.Errorf("unknown appointment status %q", a.Status)
	}
	if a.Status.IsLive() {
		if a.Date == "" || a.Time == "" {
			return fmt.Errorf("live appointment requires date and time")
		}
		if _, err := ParseDate(a.Date); err != nil {
			return err
		}
	}
	return nil
}

// ParseDate parses a calendar date in the clinic's local time zone.
func ParseDate(date string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return d, nil
}

type CreateAppointmentRequest struct {
	PatientID        uuid.UUID `json:"patient_id" validate:"required"`
	ServiceType      string    `json:"service_type" validate:"required,max=100"`
	PractitionerName string    `json:"practitioner_name" validate:"max=100"`
	Date             string    `json:"date" validate:"required"`
	Time             string    `json:"time" validate:"required"`
	Notes            string    `json:"notes" validate:"max=1000"`
}

type ScheduleAppointmentRequest struct {
	PatientID        uuid.UUID `json:"patient_id" validate:"required"`
	ServiceType      string    `json:"service_type" validate:"required,max=100"`
	PractitionerName string    `json:"practitioner_name" validate:"required,max=100"`
	Date             string    `json:"date" validate:"required"`
	Time             string    `json:"time" validate:"required"`
	Notes            string    `json:"notes" validate:"max=1000"`
}

type AssignPractitionerRequest struct {
	PractitionerName string `json:"practitioner_name" validate:"required,max=100"`
}

type AppointmentFilters struct {
	PatientID        uuid.UUID
	PractitionerName string
	Status           AppointmentStatus
	FromDate         string
	ToDate           string
}
