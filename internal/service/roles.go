package service

import (
	"context"
	"errors"
	"fmt"

	"showpro/internal/access"
	"showpro/internal/cache"
	apperrors "showpro/internal/errors"
	"showpro/internal/identity"
	"showpro/internal/logger"
	"showpro/internal/models"

	"github.com/google/uuid"
)

// DefaultRole получает пользователь без записи в user_roles
const DefaultRole = access.RoleViewer

type RoleStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserRole, error)
	List(ctx context.Context) ([]models.UserRole, error)
	Upsert(ctx context.Context, userID, role string, email *string) (*models.UserRole, error)
}

type RoleService struct {
	roles RoleStore
	cache RoleCache
}

func NewRoleService(roles RoleStore, c RoleCache) *RoleService {
	return &RoleService{roles: roles, cache: c}
}

// Resolve возвращает роль пользователя: сначала кеш, затем user_roles
func (s *RoleService) Resolve(ctx context.Context, userID string) (string, error) {
	log := logger.WithContext(ctx)

	if s.cache != nil {
		role, err := s.cache.GetRole(ctx, userID)
		if err == nil {
			return role, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn("Role cache read failed", "error", err, "user_id", userID)
		}
	}

	row, err := s.roles.GetByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve role: %w", err)
	}
	role := DefaultRole
	if row != nil {
		role = row.Role
	}

	if s.cache != nil {
		if err := s.cache.SetRole(ctx, userID, role); err != nil {
			log.Warn("Role cache write failed", "error", err, "user_id", userID)
		}
	}
	return role, nil
}

// Me - текущий пользователь и его права
func (s *RoleService) Me(ctx context.Context) (*models.MeResponse, error) {
	id, ok := identity.FromContext(ctx)
	if !ok || id.IsZero() {
		return nil, apperrors.ErrUnauthorized
	}
	return &models.MeResponse{
		UserID:      id.UserID.String(),
		Email:       id.Email,
		Role:        id.Role,
		Permissions: access.Permissions(id.Role),
	}, nil
}

func (s *RoleService) List(ctx context.Context) ([]models.UserRole, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// Assign назначает роль и сбрасывает кеш роли пользователя
func (s *RoleService) Assign(ctx context.Context, userID string, req *models.AssignRoleRequest) (*models.UserRole, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Invalid("user_id", "must be a UUID")
	}
	if !access.ValidRole(req.Role) {
		return nil, apperrors.Invalid("role", "must be one of: admin, manager, staff, viewer")
	}

	row, err := s.roles.Upsert(ctx, uid.String(), req.Role, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateRole(ctx, uid.String()); err != nil {
			logger.WithContext(ctx).Error("Failed to invalidate role cache",
				"error", err, "user_id", uid.String())
		}
	}

	logger.WithContext(ctx).Info("Role assigned", "user_id", uid.String(), "role", req.Role)
	return row, nil
}
