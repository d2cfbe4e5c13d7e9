package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/brightsmile/dental-api/internal/model"
)

func (r *slotCatalogRepository) GetTimes(ctx context.Context, practitionerName, date string) ([]string, error) {
	query := `
		SELECT times
		FROM slot_catalog
		WHERE practitioner_name = $1 AND visit_date = $2
	`
	var times pq.StringArray
	err := r.db.GetContext(ctx, &times, query, practitionerName, date)
	if errors.Is(err, sql.ErrNoRows) {
		// No catalog entry means no availability, not an error.
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot catalog: %w", err)
	}
	return []string(times), nil
}

func (r *slotCatalogRepository) Upsert(ctx context.Context, entry *model.SlotCatalogEntry) error {
	query := `
		INSERT INTO slot_catalog (
			id, practitioner_name, visit_date, times, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (practitioner_name, visit_date)
		DO UPDATE SET times = EXCLUDED.times, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.PractitionerName,
		entry.Date,
		entry.Times,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert slot catalog entry: %w", err)
	}
	return nil
}
