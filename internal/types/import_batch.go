package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ImportBatch tracks one file (or row-set) import end to end, including the
// collected row-level errors so partial successes stay inspectable.
type ImportBatch struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SourceType   SourceType     `gorm:"column:source_type;not null;index" json:"source_type"`
	FileName     string         `gorm:"column:file_name" json:"file_name,omitempty"`
	FileFormat   string         `gorm:"column:file_format" json:"file_format,omitempty"`
	Status       ImportStatus   `gorm:"column:status;not null" json:"status"`
	RowsImported int            `gorm:"column:rows_imported;not null" json:"rows_imported"`
	RowsFailed   int            `gorm:"column:rows_failed;not null" json:"rows_failed"`
	Warnings     int            `gorm:"column:warnings;not null" json:"warnings"`
	RowErrors    datatypes.JSON `gorm:"column:row_errors" json:"row_errors,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
}

func (ImportBatch) TableName() string { return "import_batch" }
