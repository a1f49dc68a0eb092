package validation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/repos"
	"github.com/lotsight/lotsight-backend/internal/types"
)

// ValidationReport is the outcome of one full scan. Detection is
// idempotent: rerunning over unchanged data reports the same open set and
// inserts nothing new.
type ValidationReport struct {
	Valid              bool                 `json:"valid"`
	GeneratedAt        time.Time            `json:"generated_at"`
	TotalOpen          int                  `json:"total_open"`
	NewDiscrepancies   []*types.Discrepancy `json:"new_discrepancies"`
	FlaggedIdentifiers int                  `json:"flagged_identifiers"`
	Errors             []string             `json:"errors,omitempty"`
}

type Service interface {
	ValidateAll(ctx context.Context) (*ValidationReport, error)
	ListDiscrepancies(ctx context.Context, status types.ResolutionStatus, limit int) ([]*types.Discrepancy, error)
	Resolve(ctx context.Context, id uuid.UUID, status types.ResolutionStatus) error
}

type service struct {
	db              *gorm.DB
	log             *logger.Logger
	lotRepo         repos.LotRepo
	prodRepo        repos.ProductionRecordRepo
	qualityRepo     repos.QualityRecordRepo
	shippingRepo    repos.ShippingRecordRepo
	discrepancyRepo repos.DiscrepancyRepo
	auditRepo       repos.NormalizationAuditRepo
}

func NewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	lotRepo repos.LotRepo,
	prodRepo repos.ProductionRecordRepo,
	qualityRepo repos.QualityRecordRepo,
	shippingRepo repos.ShippingRecordRepo,
	discrepancyRepo repos.DiscrepancyRepo,
	auditRepo repos.NormalizationAuditRepo,
) Service {
	serviceLog := baseLog.With("service", "ValidationService")
	return &service{
		db:              db,
		log:             serviceLog,
		lotRepo:         lotRepo,
		prodRepo:        prodRepo,
		qualityRepo:     qualityRepo,
		shippingRepo:    shippingRepo,
		discrepancyRepo: discrepancyRepo,
		auditRepo:       auditRepo,
	}
}

// ValidateAll bulk-loads the per-source lot id sets once and evaluates the
// rules per lot in memory, so the pass stays linear in total record count.
func (s *service) ValidateAll(ctx context.Context) (*ValidationReport, error) {
	report := &ValidationReport{GeneratedAt: time.Now()}

	lots, err := s.lotRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load lots: %w", err)
	}

	prodSet, err := s.lotIDSet(ctx, s.prodRepo.DistinctLotIDs)
	if err != nil {
		return nil, fmt.Errorf("load production lot ids: %w", err)
	}
	qualSet, err := s.lotIDSet(ctx, s.qualityRepo.DistinctLotIDs)
	if err != nil {
		return nil, fmt.Errorf("load quality lot ids: %w", err)
	}

	shippingRecords, err := s.shippingRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load shipping records: %w", err)
	}
	shipStatuses := make(map[uuid.UUID][]string)
	for _, rec := range shippingRecords {
		shipStatuses[rec.LotID] = append(shipStatuses[rec.LotID], rec.ShipmentStatus)
	}

	open, err := s.discrepancyRepo.ListOpen(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load open discrepancies: %w", err)
	}
	seen := make(map[string]bool, len(open))
	for _, d := range open {
		seen[dedupeKey(d.LotID, d.MissingInSource, d.Description)] = true
	}

	var fresh []*types.Discrepancy
	for _, lot := range lots {
		findings, flag := evaluateLot(lot, prodSet, qualSet, shipStatuses)
		for _, f := range findings {
			key := dedupeKey(lot.ID, f.MissingInSource, f.Description)
			if seen[key] {
				continue
			}
			seen[key] = true
			fresh = append(fresh, f)
		}
		if flag != types.DataFlagNone && lot.DataFlag != flag {
			if err := s.lotRepo.SetDataFlag(ctx, nil, lot.ID, flag); err != nil {
				// A single lot must not sink the scan.
				s.log.Warn("Failed to flag lot", "canonical_id", lot.CanonicalID, "error", err)
				report.Errors = append(report.Errors, fmt.Sprintf("flag lot %s: %v", lot.CanonicalID, err))
			}
		}
	}

	if len(fresh) > 0 {
		if _, err := s.discrepancyRepo.Create(ctx, nil, fresh); err != nil {
			return nil, fmt.Errorf("record discrepancies: %w", err)
		}
	}

	flagged, err := s.auditRepo.ListFlagged(ctx, nil)
	if err != nil {
		s.log.Warn("Failed to load flagged identifiers", "error", err)
		report.Errors = append(report.Errors, fmt.Sprintf("flagged identifiers: %v", err))
	}

	report.NewDiscrepancies = fresh
	report.TotalOpen = len(open) + len(fresh)
	report.FlaggedIdentifiers = len(flagged)
	report.Valid = report.TotalOpen == 0
	s.log.Info("Validation complete",
		"lots", len(lots),
		"new_discrepancies", len(fresh),
		"total_open", report.TotalOpen,
		"flagged_identifiers", report.FlaggedIdentifiers,
	)
	return report, nil
}

// evaluateLot applies the cross-source rules for a single lot. Within the
// missing-production category the first matching rule wins; independent
// categories can all fire for the same lot.
func evaluateLot(lot *types.Lot, prodSet, qualSet map[uuid.UUID]bool, shipStatuses map[uuid.UUID][]string) ([]*types.Discrepancy, types.DataFlag) {
	var findings []*types.Discrepancy
	flag := types.DataFlagNone

	hasProd := prodSet[lot.ID]
	hasQual := qualSet[lot.ID]
	statuses := shipStatuses[lot.ID]
	hasShip := len(statuses) > 0

	if !hasProd {
		switch {
		case hasQual:
			findings = append(findings, newDiscrepancy(lot.ID, types.MissingProduction,
				"quality inspections recorded but no production trace exists"))
			flag = types.DataFlagMissingSource
		case hasShip:
			findings = append(findings, newDiscrepancy(lot.ID, types.MissingProduction,
				"shipped without production trace"))
			flag = types.DataFlagMissingSource
		}
	}

	if hasProd && !hasShip {
		// Informational: production exists, shipping just has not happened.
		findings = append(findings, newDiscrepancy(lot.ID, types.MissingShipping,
			"pending shipment: production recorded, no shipping record yet"))
	}

	if distinct := distinctSorted(statuses); len(statuses) > 1 && len(distinct) > 1 {
		findings = append(findings, newDiscrepancy(lot.ID, types.MissingNone,
			"inconsistent shipment status: "+strings.Join(distinct, ", ")))
		flag = types.DataFlagInconsistent
	}

	return findings, flag
}

func newDiscrepancy(lotID uuid.UUID, missing types.MissingSource, description string) *types.Discrepancy {
	return &types.Discrepancy{
		ID:               uuid.New(),
		LotID:            lotID,
		MissingInSource:  missing,
		Description:      description,
		ResolutionStatus: types.ResolutionOpen,
	}
}

func dedupeKey(lotID uuid.UUID, missing types.MissingSource, description string) string {
	return lotID.String() + "|" + string(missing) + "|" + description
}

func distinctSorted(values []string) []string {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s *service) lotIDSet(ctx context.Context, fetch func(context.Context, *gorm.DB) ([]uuid.UUID, error)) (map[uuid.UUID]bool, error) {
	ids, err := fetch(ctx, nil)
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *service) ListDiscrepancies(ctx context.Context, status types.ResolutionStatus, limit int) ([]*types.Discrepancy, error) {
	return s.discrepancyRepo.ListByStatus(ctx, nil, status, limit)
}

// Resolve moves a discrepancy through human review. The validator itself
// never changes resolution status.
func (s *service) Resolve(ctx context.Context, id uuid.UUID, status types.ResolutionStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid resolution status %q", status)
	}
	if err := s.discrepancyRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return fmt.Errorf("resolve discrepancy %s: %w", id, err)
	}
	s.log.Info("Discrepancy resolution updated", "discrepancy_id", id, "status", status)
	return nil
}
