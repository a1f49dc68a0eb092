package types

import (
	"time"

	"github.com/google/uuid"
)

// DefectType is reference data resolved by name during quality import.
type DefectType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (DefectType) TableName() string { return "defect_type" }
