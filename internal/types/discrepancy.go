package types

import (
	"time"

	"github.com/google/uuid"
)

// Discrepancy records one cross-source inconsistency for a lot, awaiting
// human review. The validator creates them; only the review endpoint moves
// resolution_status off "open".
type Discrepancy struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	LotID            uuid.UUID        `gorm:"type:uuid;column:lot_id;not null;index" json:"lot_id"`
	Lot              *Lot             `gorm:"foreignKey:LotID;references:ID" json:"lot,omitempty"`
	MissingInSource  MissingSource    `gorm:"column:missing_in_source;not null" json:"missing_in_source"`
	Description      string           `gorm:"column:description;not null" json:"description"`
	ResolutionStatus ResolutionStatus `gorm:"column:resolution_status;not null;default:'open';index" json:"resolution_status"`
	CreatedAt        time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null" json:"updated_at"`
}

func (Discrepancy) TableName() string { return "discrepancy" }
