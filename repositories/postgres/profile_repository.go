package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/studio-dashboard/models"
	"github.com/upb/studio-dashboard/repositories"
	"github.com/upb/studio-dashboard/services"
	"go.uber.org/zap"
)

// ProfileRepository implements the repositories.ProfileRepository interface
type ProfileRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB, logger *zap.Logger) repositories.ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT id, email, COALESCE(full_name, ''), COALESCE(role, ''), created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	profile := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.Role,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.ErrProfileNotFound.WithDetail("id", id.String())
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

// RoleBySubject returns the role stored on the subject's profile
func (r *ProfileRepository) RoleBySubject(ctx context.Context, subject uuid.UUID) (string, error) {
	query := `SELECT COALESCE(role, '') FROM profiles WHERE id = $1`

	var role string
	if err := r.db.QueryRowContext(ctx, query, subject).Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", services.ErrProfileNotFound.WithDetail("id", subject.String())
		}
		return "", fmt.Errorf("failed to get profile role: %w", err)
	}

	r.logger.Debug("profile role loaded", zap.String("id", subject.String()), zap.String("role", role))
	return role, nil
}
