package types

import (
	"time"

	"github.com/google/uuid"
)

// Lot is the canonical hub every per-source record hangs off. Exactly one
// Lot exists per distinct canonical identifier; the identifier is immutable
// once assigned.
type Lot struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CanonicalID      string          `gorm:"column:canonical_id;not null;uniqueIndex" json:"canonical_id"`
	ProductionDate   *time.Time      `gorm:"column:production_date" json:"production_date,omitempty"`
	ProductionLineID *uuid.UUID      `gorm:"type:uuid;column:production_line_id;index" json:"production_line_id,omitempty"`
	ProductionLine   *ProductionLine `gorm:"foreignKey:ProductionLineID;references:ID" json:"production_line,omitempty"`
	WasNormalized    bool            `gorm:"column:was_normalized;not null;default:false" json:"was_normalized"`
	DataFlag         DataFlag        `gorm:"column:data_flag;not null;default:'none'" json:"data_flag"`
	CreatedAt        time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updated_at"`
}

func (Lot) TableName() string { return "lot" }
