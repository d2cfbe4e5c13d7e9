package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/brightsmile/dental-api/internal/model"
	"github.com/brightsmile/dental-api/internal/repository"
)

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	query := `
		SELECT id, email, name, password_hash, role, created_at, updated_at
		FROM admins
		WHERE email = $1
	`
	var admin model.Admin
	err := r.db.GetContext(ctx, &admin, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &admin, nil
}
