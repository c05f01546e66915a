package postgres

import (
	"context"
	"fmt"

	"github.com/upb/studio-dashboard/models"
	"github.com/upb/studio-dashboard/repositories"
	"go.uber.org/zap"
)

// PriceTierRepository implements the repositories.PriceTierRepository interface
type PriceTierRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPriceTierRepository creates a new price tier repository
func NewPriceTierRepository(db *DB, logger *zap.Logger) repositories.PriceTierRepository {
	return &PriceTierRepository{
		db:     db,
		logger: logger,
	}
}

// List retrieves all price tiers ordered for display
func (r *PriceTierRepository) List(ctx context.Context) ([]*models.PriceTier, error) {
	query := `
		SELECT id, name, min_quantity, unit_price_cents, currency, sort_order
		FROM price_tiers
		ORDER BY sort_order, min_quantity
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list price tiers: %w", err)
	}
	defer rows.Close()

	var tiers []*models.PriceTier
	for rows.Next() {
		tier := &models.PriceTier{}
		if err := rows.Scan(
			&tier.ID,
			&tier.Name,
			&tier.MinQuantity,
			&tier.UnitPriceCents,
			&tier.Currency,
			&tier.SortOrder,
		); err != nil {
			return nil, fmt.Errorf("failed to scan price tier: %w", err)
		}
		tiers = append(tiers, tier)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price tiers: %w", err)
	}

	r.logger.Debug("price tiers loaded", zap.Int("count", len(tiers)))
	return tiers, nil
}
