package types

import (
	"time"

	"github.com/google/uuid"
)

// QualityRecord belongs to exactly one Lot. A lot may accumulate any number
// of inspection records.
type QualityRecord struct {
	ID               uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	LotID            uuid.UUID   `gorm:"type:uuid;column:lot_id;not null;index" json:"lot_id"`
	Lot              *Lot        `gorm:"foreignKey:LotID;references:ID" json:"lot,omitempty"`
	InspectionDate   time.Time   `gorm:"column:inspection_date;not null;index" json:"inspection_date"`
	DefectTypeID     uuid.UUID   `gorm:"type:uuid;column:defect_type_id;not null;index" json:"defect_type_id"`
	DefectType       *DefectType `gorm:"foreignKey:DefectTypeID;references:ID" json:"defect_type,omitempty"`
	DefectCount      int         `gorm:"column:defect_count;not null;check:defect_count >= 0" json:"defect_count"`
	InspectionStatus string      `gorm:"column:inspection_status;not null" json:"inspection_status"`
	Inspector        string      `gorm:"column:inspector" json:"inspector,omitempty"`
	Notes            string      `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt        time.Time   `gorm:"not null" json:"created_at"`
}

func (QualityRecord) TableName() string { return "quality_record" }
