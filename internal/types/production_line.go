package types

import (
	"time"

	"github.com/google/uuid"
)

// ProductionLine is reference data resolved by name during import.
type ProductionLine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ProductionLine) TableName() string { return "production_line" }
