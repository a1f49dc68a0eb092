package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/types"
)

type LotRepo interface {
	// ResolveOrCreate returns the lot for the canonical identifier, creating
	// it if absent. The insert races through the unique index on
	// canonical_id, so two concurrent import batches resolving the same
	// identifier converge on one lot. The bool reports whether this call
	// created the lot.
	ResolveOrCreate(ctx context.Context, tx *gorm.DB, canonical string, wasNormalized bool) (*types.Lot, bool, error)
	GetByCanonicalID(ctx context.Context, tx *gorm.DB, canonical string) (*types.Lot, error)
	GetByID(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) (*types.Lot, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Lot, error)
	SetProductionContext(ctx context.Context, tx *gorm.DB, lotID uuid.UUID, productionDate time.Time, lineID uuid.UUID) error
	SetDataFlag(ctx context.Context, tx *gorm.DB, lotID uuid.UUID, flag types.DataFlag) error
}

type lotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLotRepo(db *gorm.DB, baseLog *logger.Logger) LotRepo {
	repoLog := baseLog.With("repo", "LotRepo")
	return &lotRepo{db: db, log: repoLog}
}

func (r *lotRepo) ResolveOrCreate(ctx context.Context, tx *gorm.DB, canonical string, wasNormalized bool) (*types.Lot, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	lot := &types.Lot{
		ID:            uuid.New(),
		CanonicalID:   canonical,
		WasNormalized: wasNormalized,
		DataFlag:      types.DataFlagNone,
	}
	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "canonical_id"}},
			DoNothing: true,
		}).
		Create(lot)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return lot, true, nil
	}

	// Another batch got there first; observe its lot.
	var existing types.Lot
	if err := transaction.WithContext(ctx).
		Where("canonical_id = ?", canonical).
		First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

func (r *lotRepo) GetByCanonicalID(ctx context.Context, tx *gorm.DB, canonical string) (*types.Lot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var lot types.Lot
	if err := transaction.WithContext(ctx).
		Preload("ProductionLine").
		Where("canonical_id = ?", canonical).
		First(&lot).Error; err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *lotRepo) GetByID(ctx context.Context, tx *gorm.DB, lotID uuid.UUID) (*types.Lot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var lot types.Lot
	if err := transaction.WithContext(ctx).
		Preload("ProductionLine").
		Where("id = ?", lotID).
		First(&lot).Error; err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *lotRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Lot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var lots []*types.Lot
	if err := transaction.WithContext(ctx).
		Order("canonical_id").
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// SetProductionContext fills in the lot's production date and line the
// first time a production record arrives. The canonical identifier itself
// is never touched.
func (r *lotRepo) SetProductionContext(ctx context.Context, tx *gorm.DB, lotID uuid.UUID, productionDate time.Time, lineID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Lot{}).
		Where("id = ? AND production_date IS NULL", lotID).
		Updates(map[string]interface{}{
			"production_date":    productionDate,
			"production_line_id": lineID,
		}).Error
}

func (r *lotRepo) SetDataFlag(ctx context.Context, tx *gorm.DB, lotID uuid.UUID, flag types.DataFlag) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Lot{}).
		Where("id = ?", lotID).
		Update("data_flag", flag).Error
}
