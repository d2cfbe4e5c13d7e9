package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/brightsmile/dental-api/internal/model"
	"github.com/brightsmile/dental-api/internal/repository"
)

func (r *practitionerRepository) Create(ctx context.Context, practitioner *model.Practitioner) error {
	query := `
		INSERT INTO practitioners (
			id, name, specialty, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		practitioner.ID,
		practitioner.Name,
		practitioner.Specialty,
		practitioner.Active,
		practitioner.CreatedAt,
		practitioner.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create practitioner: %w", err)
	}
	return nil
}

func (r *practitionerRepository) GetByName(ctx context.Context, name string) (*model.Practitioner, error) {
	query := `
		SELECT id, name, specialty, active, created_at, updated_at
		FROM practitioners
		WHERE name = $1
	`
	var practitioner model.Practitioner
	err := r.db.GetContext(ctx, &practitioner, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get practitioner: %w", err)
	}
	return &practitioner, nil
}

func (r *practitionerRepository) List(ctx context.Context) ([]*model.Practitioner, error) {
	query := `
		SELECT id, name, specialty, active, created_at, updated_at
		FROM practitioners
		WHERE active = true
		ORDER BY name ASC
	`
	var practitioners []*model.Practitioner
	err := r.db.SelectContext(ctx, &practitioners, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list practitioners: %w", err)
	}
	return practitioners, nil
}
