package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/upb/studio-dashboard/models"
)

// ProfileRepository handles profile data operations
type ProfileRepository interface {
	// GetByID retrieves a profile by the auth provider subject
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)

	// RoleBySubject returns the stored role for a subject.
	// Returns services.ErrProfileNotFound when no profile exists.
	RoleBySubject(ctx context.Context, subject uuid.UUID) (string, error)
}

// DesignRepository handles design data operations
type DesignRepository interface {
	// GetByID retrieves a design by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Design, error)

	// List retrieves designs matching the filter, most recently updated first
	List(ctx context.Context, filter models.DesignFilter) ([]*models.Design, error)

	// Steps returns the distinct designer flow steps that have designs
	Steps(ctx context.Context) ([]string, error)
}

// PriceTierRepository handles price structure data operations
type PriceTierRepository interface {
	// List retrieves all price tiers in display order
	List(ctx context.Context) ([]*models.PriceTier, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Profiles   ProfileRepository
	Designs    DesignRepository
	PriceTiers PriceTierRepository
}
