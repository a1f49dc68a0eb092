package types

// SourceType identifies which of the three operational streams a record
// or import batch came from.
type SourceType string

const (
	SourceProduction SourceType = "production"
	SourceQuality    SourceType = "quality"
	SourceShipping   SourceType = "shipping"
)

func (s SourceType) Valid() bool {
	switch s {
	case SourceProduction, SourceQuality, SourceShipping:
		return true
	}
	return false
}

// DataFlag marks a lot that validation found something wrong with. Lots are
// never deleted, only flagged.
type DataFlag string

const (
	DataFlagNone          DataFlag = "none"
	DataFlagMissingSource DataFlag = "missing-source"
	DataFlagInconsistent  DataFlag = "inconsistent"
	DataFlagUnmatched     DataFlag = "unmatched"
)

// ValidationStatus is the outcome recorded for every raw identifier seen.
type ValidationStatus string

const (
	ValidationValid     ValidationStatus = "valid"
	ValidationAmbiguous ValidationStatus = "ambiguous"
	ValidationUnmatched ValidationStatus = "unmatched"
)

// MissingSource tags a discrepancy with the stream that lacks a record.
// MissingNone is used for inconsistencies that are not absence-of-record,
// e.g. conflicting shipment statuses.
type MissingSource string

const (
	MissingProduction MissingSource = "production"
	MissingQuality    MissingSource = "quality"
	MissingShipping   MissingSource = "shipping"
	MissingNone       MissingSource = "none"
)

// ResolutionStatus tracks human review of a discrepancy. Transitions happen
// only through the explicit review endpoint, never inside the validator.
type ResolutionStatus string

const (
	ResolutionOpen     ResolutionStatus = "open"
	ResolutionReviewed ResolutionStatus = "reviewed"
	ResolutionResolved ResolutionStatus = "resolved"
)

func (r ResolutionStatus) Valid() bool {
	switch r {
	case ResolutionOpen, ResolutionReviewed, ResolutionResolved:
		return true
	}
	return false
}

// ImportStatus is the batch-level outcome of one import.
type ImportStatus string

const (
	ImportSucceeded ImportStatus = "succeeded"
	ImportPartial   ImportStatus = "partial"
	ImportFailed    ImportStatus = "failed"
)

// Shipment status values the consolidator derives. Anything else is carried
// through verbatim from the shipping source.
const (
	ShipmentNotShipped  = "not shipped"
	ShipmentConflicting = "conflicting"
)
