package models

import (
	"fmt"

	"github.com/google/uuid"
)

// PriceTier is one row of the price structure
type PriceTier struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	MinQuantity    int       `json:"min_quantity" db:"min_quantity"`
	UnitPriceCents int64     `json:"unit_price_cents" db:"unit_price_cents"`
	Currency       string    `json:"currency" db:"currency"`
	SortOrder      int       `json:"sort_order" db:"sort_order"`
}

// TableName returns the table name for the PriceTier model
func (PriceTier) TableName() string {
	return "price_tiers"
}

// UnitPrice formats the unit price, e.g. "12.50 USD"
func (p *PriceTier) UnitPrice() string {
	cents := p.UnitPriceCents
	whole, frac := cents/100, cents%100
	sign := ""
	if cents < 0 {
		// negate the parts, not cents: -math.MinInt64 overflows
		sign = "-"
		whole, frac = -whole, -frac
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, whole, frac, p.Currency)
}
