package models

import (
	"time"

	"github.com/google/uuid"
)

// DesignStatus represents where a design is in the designer flow
type DesignStatus string

const (
	DesignStatusDraft    DesignStatus = "draft"
	DesignStatusInReview DesignStatus = "in_review"
	DesignStatusApproved DesignStatus = "approved"
	DesignStatusArchived DesignStatus = "archived"
)

// Design is a piece of work moving through the designer flow
type Design struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	OwnerID   uuid.UUID    `json:"owner_id" db:"owner_id"`
	Name      string       `json:"name" db:"name"`
	Step      string       `json:"step" db:"step"`
	Status    DesignStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Design model
func (Design) TableName() string {
	return "designs"
}

// NewDesign creates a new draft Design
func NewDesign(ownerID uuid.UUID, name, step string) *Design {
	now := time.Now()
	return &Design{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Step:      step,
		Status:    DesignStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsEditable returns true while the design can still change
func (d *Design) IsEditable() bool {
	return d.Status == DesignStatusDraft || d.Status == DesignStatusInReview
}

// DesignFilter narrows design listings. Zero fields do not filter.
type DesignFilter struct {
	OwnerID *uuid.UUID
	Step    string
	Limit   int
	Offset  int
}
