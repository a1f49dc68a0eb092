package ingestion

import (
	"strings"

	"github.com/lotsight/lotsight-backend/internal/types"
)

// Row is one parsed input row: lowercase column name -> raw string value.
// This is the boundary contract with the file parsers; everything past it
// works on typed entities.
type Row map[string]string

var requiredColumns = map[types.SourceType][]string{
	types.SourceProduction: {"lot_id", "production_date", "production_line", "timestamp", "quantity_produced", "status"},
	types.SourceQuality:    {"lot_id", "inspection_date", "defect_type", "defect_count", "inspection_status"},
	types.SourceShipping:   {"lot_id", "shipment_date", "shipment_status"},
}

var optionalColumns = map[types.SourceType][]string{
	types.SourceProduction: {"issue_description"},
	types.SourceQuality:    {"inspector", "notes"},
	types.SourceShipping:   {"carrier_info", "destination"},
}

// CheckSchema verifies the header carries every required column for the
// source type. A miss fails the whole batch before any row is touched.
func CheckSchema(source types.SourceType, headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[normalizeHeader(h)] = true
	}

	var missing []string
	for _, col := range requiredColumns[source] {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &types.SchemaError{SourceType: source, MissingColumns: missing}
	}
	return nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
