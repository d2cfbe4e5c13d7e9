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

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, name, email, phone, date_of_birth, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		patient.Email,
		patient.Phone,
		patient.DateOfBirth,
		patient.Status,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, name, email, phone, date_of_birth, status, created_at, updated_at
		FROM patients
		WHERE id = $1
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `
		SELECT id, name, email, phone, date_of_birth, status, created_at, updated_at
		FROM patients
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.SearchTerm != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", argCount, argCount)
		args = append(args, "%"+filters.SearchTerm+"%")
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	query += " ORDER BY name ASC"

	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
