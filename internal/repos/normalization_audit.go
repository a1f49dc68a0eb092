package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/types"
)

type NormalizationAuditRepo interface {
	// Append never updates; the audit trail is insert-only.
	Append(ctx context.Context, tx *gorm.DB, entries []*types.NormalizationAudit) ([]*types.NormalizationAudit, error)
	// DistinctOriginalsByNormalized returns every distinct raw form ever
	// seen that normalized to the given canonical value.
	DistinctOriginalsByNormalized(ctx context.Context, tx *gorm.DB, normalized string) ([]string, error)
	ListByNormalized(ctx context.Context, tx *gorm.DB, normalized string) ([]*types.NormalizationAudit, error)
	ListFlagged(ctx context.Context, tx *gorm.DB) ([]*types.NormalizationAudit, error)
}

type normalizationAuditRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNormalizationAuditRepo(db *gorm.DB, baseLog *logger.Logger) NormalizationAuditRepo {
	repoLog := baseLog.With("repo", "NormalizationAuditRepo")
	return &normalizationAuditRepo{db: db, log: repoLog}
}

func (r *normalizationAuditRepo) Append(ctx context.Context, tx *gorm.DB, entries []*types.NormalizationAudit) ([]*types.NormalizationAudit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(entries) == 0 {
		return []*types.NormalizationAudit{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *normalizationAuditRepo) DistinctOriginalsByNormalized(ctx context.Context, tx *gorm.DB, normalized string) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var originals []string
	if err := transaction.WithContext(ctx).
		Model(&types.NormalizationAudit{}).
		Distinct("original_lot_id").
		Where("normalized_lot_id = ?", normalized).
		Pluck("original_lot_id", &originals).Error; err != nil {
		return nil, err
	}
	return originals, nil
}

func (r *normalizationAuditRepo) ListByNormalized(ctx context.Context, tx *gorm.DB, normalized string) ([]*types.NormalizationAudit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.NormalizationAudit
	if err := transaction.WithContext(ctx).
		Where("normalized_lot_id = ?", normalized).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *normalizationAuditRepo) ListFlagged(ctx context.Context, tx *gorm.DB) ([]*types.NormalizationAudit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.NormalizationAudit
	if err := transaction.WithContext(ctx).
		Where("validation_status IN ?", []types.ValidationStatus{types.ValidationAmbiguous, types.ValidationUnmatched}).
		Order("created_at").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
