package types

import (
	"time"

	"github.com/google/uuid"
)

// NormalizationAudit is appended once per normalization call, including
// repeat sightings of the same raw identifier, so the table reflects the
// import history rather than the set of distinct identifiers. Rows are
// never mutated.
type NormalizationAudit struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	OriginalLotID    string           `gorm:"column:original_lot_id;not null;index" json:"original_lot_id"`
	NormalizedLotID  string           `gorm:"column:normalized_lot_id;not null;index" json:"normalized_lot_id"`
	ValidationStatus ValidationStatus `gorm:"column:validation_status;not null" json:"validation_status"`
	FlagReason       string           `gorm:"column:flag_reason" json:"flag_reason,omitempty"`
	CreatedAt        time.Time        `gorm:"not null" json:"created_at"`
}

func (NormalizationAudit) TableName() string { return "normalization_audit" }
