package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/brightsmile/dental-api/internal/model"
	"github.com/brightsmile/dental-api/internal/repository"
)

// The appointments table carries a partial unique index on
// (practitioner_name, visit_date, visit_time) WHERE status IN
// ('pending_confirmation','scheduled','confirmed'), which is the
// authoritative double-booking guard under concurrent writers. The
// service-level conflict checks below only make the common case fail
// early with a precise error.

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, practitioner_name, service_type,
			visit_date, visit_time, status, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.PractitionerName,
		appointment.ServiceType,
		appointment.Date,
		appointment.Time,
		appointment.Status,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, practitioner_name, service_type,
			   visit_date, visit_time, status, notes,
			   created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if err := appointment.Validate(); err != nil {
		return nil, fmt.Errorf("malformed appointment row %s: %w", id, err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET practitioner_name = $1, service_type = $2, visit_date = $3,
			visit_time = $4, status = $5, notes = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		appointment.PractitionerName,
		appointment.ServiceType,
		appointment.Date,
		appointment.Time,
		appointment.Status,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, patient_id, practitioner_name, service_type,
			   visit_date, visit_time, status, notes,
			   created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	if filters.PractitionerName != "" {
		query += fmt.Sprintf(" AND practitioner_name = $%d", argCount)
		args = append(args, filters.PractitionerName)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if filters.FromDate != "" {
		query += fmt.Sprintf(" AND visit_date >= $%d", argCount)
		args = append(args, filters.FromDate)
		argCount++
	}

	if filters.ToDate != "" {
		query += fmt.Sprintf(" AND visit_date <= $%d", argCount)
		args = append(args, filters.ToDate)
		argCount++
	}

	query += " ORDER BY visit_date ASC, created_at ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListLive(ctx context.Context, practitionerName, date string) ([]*model.Appointment, error) {
	query := `
		SELECT id, patient_id, practitioner_name, service_type,
			   visit_date, visit_time, status, notes,
			   created_at, updated_at
		FROM appointments
		WHERE practitioner_name = $1
		AND visit_date = $2
		AND status IN ('pending_confirmation', 'scheduled', 'confirmed')
		ORDER BY created_at ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, practitionerName, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list live appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) HasLiveConflict(ctx context.Context, practitionerName, date, timeOfDay string, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE practitioner_name = $1
			AND visit_date = $2
			AND visit_time = $3
			AND status IN ('pending_confirmation', 'scheduled', 'confirmed')
	`
	args := []interface{}{practitionerName, date, timeOfDay}

	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}

	query += ")"

	var hasConflict bool
	err := r.db.GetContext(ctx, &hasConflict, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check slot conflict: %w", err)
	}
	return hasConflict, nil
}
