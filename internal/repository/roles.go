package repository

import (
	"context"
	"database/sql"
	"fmt"

	"showpro/internal/database"
	"showpro/internal/models"
)

type RoleRepository struct {
	db *database.DB
}

func NewRoleRepository(db *database.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// GetByUserID возвращает nil, nil если роль не назначена
func (r *RoleRepository) GetByUserID(ctx context.Context, userID string) (*models.UserRole, error) {
	role := &models.UserRole{}
	query := `
		SELECT id, user_id, email, role, created_at, updated_at
		FROM user_roles
		WHERE user_id = $1`

	err := r.db.GetContext(ctx, role, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role for %s: %w", userID, err)
	}
	return role, nil
}

func (r *RoleRepository) List(ctx context.Context) ([]models.UserRole, error) {
	roles := []models.UserRole{}
	query := `
		SELECT id, user_id, email, role, created_at, updated_at
		FROM user_roles
		ORDER BY email NULLS LAST, user_id`

	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// Upsert назначает роль; email обновляется только если передан
func (r *RoleRepository) Upsert(ctx context.Context, userID, role string, email *string) (*models.UserRole, error) {
	result := &models.UserRole{}
	query := `
		INSERT INTO user_roles (user_id, email, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET role = EXCLUDED.role,
		    email = COALESCE(EXCLUDED.email, user_roles.email),
		    updated_at = NOW()
		RETURNING id, user_id, email, role, created_at, updated_at`

	if err := r.db.GetContext(ctx, result, query, userID, email, role); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}
	return result, nil
}
