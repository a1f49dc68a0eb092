package types

import (
	"time"

	"github.com/google/uuid"
)

// ProductionRecord belongs to exactly one Lot and is immutable after import.
type ProductionRecord struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	LotID            uuid.UUID       `gorm:"type:uuid;column:lot_id;not null;index" json:"lot_id"`
	Lot              *Lot            `gorm:"foreignKey:LotID;references:ID" json:"lot,omitempty"`
	ProductionLineID uuid.UUID       `gorm:"type:uuid;column:production_line_id;not null;index" json:"production_line_id"`
	ProductionLine   *ProductionLine `gorm:"foreignKey:ProductionLineID;references:ID" json:"production_line,omitempty"`
	ProductionDate   time.Time       `gorm:"column:production_date;not null;index" json:"production_date"`
	RecordTimestamp  time.Time       `gorm:"column:record_timestamp;not null" json:"record_timestamp"`
	QuantityProduced int             `gorm:"column:quantity_produced;not null;check:quantity_produced >= 0" json:"quantity_produced"`
	Status           string          `gorm:"column:status;not null" json:"status"`
	IssueDescription string          `gorm:"column:issue_description" json:"issue_description,omitempty"`
	CreatedAt        time.Time       `gorm:"not null" json:"created_at"`
}

func (ProductionRecord) TableName() string { return "production_record" }
