package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/studio-dashboard/models"
	"github.com/upb/studio-dashboard/repositories"
	"github.com/upb/studio-dashboard/services"
	"go.uber.org/zap"
)

const (
	defaultDesignLimit = 50
	maxDesignLimit     = 200
)

// DesignRepository implements the repositories.DesignRepository interface
type DesignRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDesignRepository creates a new design repository
func NewDesignRepository(db *DB, logger *zap.Logger) repositories.DesignRepository {
	return &DesignRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a design by ID
func (r *DesignRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Design, error) {
	query := `
		SELECT id, owner_id, name, step, status, created_at, updated_at
		FROM designs
		WHERE id = $1
	`

	design := &models.Design{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&design.ID,
		&design.OwnerID,
		&design.Name,
		&design.Step,
		&design.Status,
		&design.CreatedAt,
		&design.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.ErrDesignNotFound.WithDetail("id", id.String())
		}
		return nil, fmt.Errorf("failed to get design: %w", err)
	}

	return design, nil
}

// List retrieves designs matching filter, most recently updated first
func (r *DesignRepository) List(ctx context.Context, filter models.DesignFilter) ([]*models.Design, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.Step != "" {
		args = append(args, filter.Step)
		conditions = append(conditions, fmt.Sprintf("step = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultDesignLimit
	}
	if limit > maxDesignLimit {
		limit = maxDesignLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var b strings.Builder
	b.WriteString(`
		SELECT id, owner_id, name, step, status, created_at, updated_at
		FROM designs`)
	if len(conditions) > 0 {
		b.WriteString("\n\t\tWHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	args = append(args, limit, offset)
	fmt.Fprintf(&b, "\n\t\tORDER BY updated_at DESC\n\t\tLIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	defer rows.Close()

	var designs []*models.Design
	for rows.Next() {
		design := &models.Design{}
		if err := rows.Scan(
			&design.ID,
			&design.OwnerID,
			&design.Name,
			&design.Step,
			&design.Status,
			&design.CreatedAt,
			&design.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan design: %w", err)
		}
		designs = append(designs, design)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating designs: %w", err)
	}

	return designs, nil
}

// Steps returns the distinct steps that currently hold designs
func (r *DesignRepository) Steps(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT step FROM designs ORDER BY step`)
	if err != nil {
		return nil, fmt.Errorf("failed to list design steps: %w", err)
	}
	defer rows.Close()

	var steps []string
	for rows.Next() {
		var step string
		if err := rows.Scan(&step); err != nil {
			return nil, fmt.Errorf("failed to scan design step: %w", err)
		}
		steps = append(steps, step)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating design steps: %w", err)
	}

	return steps, nil
}
