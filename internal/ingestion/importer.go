package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/consolidation"
	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/normalization"
	"github.com/lotsight/lotsight-backend/internal/repos"
	"github.com/lotsight/lotsight-backend/internal/types"
)

// ImportResult is what every import returns: enough for a caller to act on
// partial success without digging through state.
type ImportResult struct {
	BatchID      uuid.UUID          `json:"batch_id"`
	Status       types.ImportStatus `json:"status"`
	RowsImported int                `json:"rows_imported"`
	RowsFailed   int                `json:"rows_failed"`
	Warnings     int                `json:"warnings"`
	RowErrors    []types.RowError   `json:"row_errors,omitempty"`
}

type Service interface {
	ImportFile(ctx context.Context, source types.SourceType, path string) (*ImportResult, error)
	ImportReader(ctx context.Context, source types.SourceType, fileName string, r io.Reader) (*ImportResult, error)
	ImportRows(ctx context.Context, source types.SourceType, headers []string, rows []Row, fileName, fileFormat string) (*ImportResult, error)
}

type service struct {
	db          *gorm.DB
	log         *logger.Logger
	validate    *validator.Validate
	normalizer  normalization.Service
	index       *consolidation.LotIndex
	lotRepo     repos.LotRepo
	lineRepo    repos.ProductionLineRepo
	defectRepo  repos.DefectTypeRepo
	prodRepo    repos.ProductionRecordRepo
	qualityRepo repos.QualityRecordRepo
	shipRepo    repos.ShippingRecordRepo
	batchRepo   repos.ImportBatchRepo
}

func NewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	normalizer normalization.Service,
	index *consolidation.LotIndex,
	lotRepo repos.LotRepo,
	lineRepo repos.ProductionLineRepo,
	defectRepo repos.DefectTypeRepo,
	prodRepo repos.ProductionRecordRepo,
	qualityRepo repos.QualityRecordRepo,
	shipRepo repos.ShippingRecordRepo,
	batchRepo repos.ImportBatchRepo,
) Service {
	serviceLog := baseLog.With("service", "ImportService")
	return &service{
		db:          db,
		log:         serviceLog,
		validate:    validator.New(),
		normalizer:  normalizer,
		index:       index,
		lotRepo:     lotRepo,
		lineRepo:    lineRepo,
		defectRepo:  defectRepo,
		prodRepo:    prodRepo,
		qualityRepo: qualityRepo,
		shipRepo:    shipRepo,
		batchRepo:   batchRepo,
	}
}

func (s *service) ImportFile(ctx context.Context, source types.SourceType, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return s.ImportReader(ctx, source, filepath.Base(path), f)
}

func (s *service) ImportReader(ctx context.Context, source types.SourceType, fileName string, r io.Reader) (*ImportResult, error) {
	var (
		headers []string
		rows    []Row
		format  string
		err     error
	)
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		format = "csv"
		headers, rows, err = ParseCSV(r)
	case ".xlsx", ".xls":
		format = "xlsx"
		headers, rows, err = ParseXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported file format %q", filepath.Ext(fileName))
	}
	if err != nil {
		return nil, err
	}
	return s.ImportRows(ctx, source, headers, rows, fileName, format)
}

// ImportRows is the batch entry point. A schema miss aborts before any row
// is touched; a bad row fails that row only and the batch keeps going.
func (s *service) ImportRows(ctx context.Context, source types.SourceType, headers []string, rows []Row, fileName, fileFormat string) (*ImportResult, error) {
	if !source.Valid() {
		return nil, fmt.Errorf("unknown source type %q", source)
	}
	if err := CheckSchema(source, headers); err != nil {
		return nil, err
	}

	s.log.Info("Importing rows", "source", source, "file", fileName, "rows", len(rows))
	result := &ImportResult{}
	for i, row := range rows {
		// Data rows start on line 2, after the header.
		rowNum := i + 2
		warned, err := s.importRow(ctx, source, row)
		if err != nil {
			result.RowsFailed++
			result.RowErrors = append(result.RowErrors, types.RowError{
				RowNumber: rowNum,
				LotID:     row["lot_id"],
				Message:   err.Error(),
			})
			s.log.Warn("Row import failed", "source", source, "row", rowNum, "error", err)
			continue
		}
		if warned {
			result.Warnings++
		}
		result.RowsImported++
	}

	switch {
	case result.RowsFailed == 0:
		result.Status = types.ImportSucceeded
	case result.RowsImported > 0:
		result.Status = types.ImportPartial
	default:
		result.Status = types.ImportFailed
	}

	batch := &types.ImportBatch{
		ID:           uuid.New(),
		SourceType:   source,
		FileName:     fileName,
		FileFormat:   fileFormat,
		Status:       result.Status,
		RowsImported: result.RowsImported,
		RowsFailed:   result.RowsFailed,
		Warnings:     result.Warnings,
	}
	if len(result.RowErrors) > 0 {
		if payload, err := json.Marshal(result.RowErrors); err == nil {
			batch.RowErrors = payload
		}
	}
	if _, err := s.batchRepo.Create(ctx, nil, batch); err != nil {
		return nil, fmt.Errorf("record import batch: %w", err)
	}
	result.BatchID = batch.ID

	s.log.Info("Import complete",
		"source", source,
		"file", fileName,
		"status", result.Status,
		"imported", result.RowsImported,
		"failed", result.RowsFailed,
		"warnings", result.Warnings,
	)
	return result, nil
}

// importRow normalizes the identifier, resolves the lot and inserts the
// typed record. The returned bool reports an ambiguity warning.
func (s *service) importRow(ctx context.Context, source types.SourceType, row Row) (bool, error) {
	raw := row["lot_id"]
	canonical, audit, err := s.normalizer.Record(ctx, nil, raw)
	if err != nil {
		if errors.Is(err, types.ErrEmptyIdentifier) {
			return false, err
		}
		return false, fmt.Errorf("normalize %q: %w", raw, err)
	}
	warned := audit.ValidationStatus == types.ValidationAmbiguous

	lotID, _, err := s.index.Resolve(ctx, nil, canonical, raw != canonical)
	if err != nil {
		return warned, fmt.Errorf("resolve lot %q: %w", canonical, err)
	}

	switch source {
	case types.SourceProduction:
		return warned, s.insertProduction(ctx, lotID, row)
	case types.SourceQuality:
		return warned, s.insertQuality(ctx, lotID, row)
	case types.SourceShipping:
		return warned, s.insertShipping(ctx, lotID, row)
	}
	return warned, fmt.Errorf("unknown source type %q", source)
}

type productionRow struct {
	ProductionLine   string `validate:"required"`
	QuantityProduced int    `validate:"gte=0"`
	Status           string `validate:"required"`
	IssueDescription string
	ProductionDate   time.Time
	Timestamp        time.Time
}

func (s *service) insertProduction(ctx context.Context, lotID uuid.UUID, row Row) error {
	parsed := productionRow{
		ProductionLine:   row["production_line"],
		Status:           row["status"],
		IssueDescription: row["issue_description"],
	}
	var err error
	if parsed.ProductionDate, err = parseDate(row["production_date"]); err != nil {
		return fmt.Errorf("production_date: %w", err)
	}
	if parsed.Timestamp, err = parseTimestamp(row["timestamp"]); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if parsed.QuantityProduced, err = parseInt(row["quantity_produced"]); err != nil {
		return fmt.Errorf("quantity_produced: %w", err)
	}
	if err := s.validate.Struct(&parsed); err != nil {
		return err
	}

	line, err := s.lineRepo.GetOrCreate(ctx, nil, parsed.ProductionLine)
	if err != nil {
		return fmt.Errorf("resolve production line %q: %w", parsed.ProductionLine, err)
	}
	if err := s.lotRepo.SetProductionContext(ctx, nil, lotID, parsed.ProductionDate, line.ID); err != nil {
		return fmt.Errorf("set lot production context: %w", err)
	}

	rec := &types.ProductionRecord{
		ID:               uuid.New(),
		LotID:            lotID,
		ProductionLineID: line.ID,
		ProductionDate:   parsed.ProductionDate,
		RecordTimestamp:  parsed.Timestamp,
		QuantityProduced: parsed.QuantityProduced,
		Status:           parsed.Status,
		IssueDescription: parsed.IssueDescription,
	}
	if _, err := s.prodRepo.Create(ctx, nil, []*types.ProductionRecord{rec}); err != nil {
		return fmt.Errorf("insert production record: %w", err)
	}
	return nil
}

type qualityRow struct {
	DefectType       string `validate:"required"`
	DefectCount      int    `validate:"gte=0"`
	InspectionStatus string `validate:"required"`
	Inspector        string
	Notes            string
	InspectionDate   time.Time
}

func (s *service) insertQuality(ctx context.Context, lotID uuid.UUID, row Row) error {
	parsed := qualityRow{
		DefectType:       row["defect_type"],
		InspectionStatus: row["inspection_status"],
		Inspector:        row["inspector"],
		Notes:            row["notes"],
	}
	var err error
	if parsed.InspectionDate, err = parseDate(row["inspection_date"]); err != nil {
		return fmt.Errorf("inspection_date: %w", err)
	}
	if parsed.DefectCount, err = parseInt(row["defect_count"]); err != nil {
		return fmt.Errorf("defect_count: %w", err)
	}
	if err := s.validate.Struct(&parsed); err != nil {
		return err
	}

	defect, err := s.defectRepo.GetOrCreate(ctx, nil, parsed.DefectType)
	if err != nil {
		return fmt.Errorf("resolve defect type %q: %w", parsed.DefectType, err)
	}

	rec := &types.QualityRecord{
		ID:               uuid.New(),
		LotID:            lotID,
		InspectionDate:   parsed.InspectionDate,
		DefectTypeID:     defect.ID,
		DefectCount:      parsed.DefectCount,
		InspectionStatus: parsed.InspectionStatus,
		Inspector:        parsed.Inspector,
		Notes:            parsed.Notes,
	}
	if _, err := s.qualityRepo.Create(ctx, nil, []*types.QualityRecord{rec}); err != nil {
		return fmt.Errorf("insert quality record: %w", err)
	}
	return nil
}

type shippingRow struct {
	ShipmentStatus string `validate:"required"`
	CarrierInfo    string
	Destination    string
	ShipmentDate   *time.Time
}

func (s *service) insertShipping(ctx context.Context, lotID uuid.UUID, row Row) error {
	parsed := shippingRow{
		ShipmentStatus: row["shipment_status"],
		CarrierInfo:    row["carrier_info"],
		Destination:    row["destination"],
	}
	if v := row["shipment_date"]; v != "" {
		d, err := parseDate(v)
		if err != nil {
			return fmt.Errorf("shipment_date: %w", err)
		}
		parsed.ShipmentDate = &d
	}
	if err := s.validate.Struct(&parsed); err != nil {
		return err
	}

	rec := &types.ShippingRecord{
		ID:             uuid.New(),
		LotID:          lotID,
		ShipmentDate:   parsed.ShipmentDate,
		ShipmentStatus: parsed.ShipmentStatus,
		CarrierInfo:    parsed.CarrierInfo,
		Destination:    parsed.Destination,
	}
	if _, err := s.shipRepo.Create(ctx, nil, []*types.ShippingRecord{rec}); err != nil {
		return fmt.Errorf("insert shipping record: %w", err)
	}
	return nil
}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006"}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", v)
}

func parseTimestamp(v string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", v)
}

func parseInt(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}
