package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/types"
)

type ImportBatchRepo interface {
	Create(ctx context.Context, tx *gorm.DB, batch *types.ImportBatch) (*types.ImportBatch, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.ImportBatch, error)
}

type importBatchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImportBatchRepo(db *gorm.DB, baseLog *logger.Logger) ImportBatchRepo {
	repoLog := baseLog.With("repo", "ImportBatchRepo")
	return &importBatchRepo{db: db, log: repoLog}
}

func (r *importBatchRepo) Create(ctx context.Context, tx *gorm.DB, batch *types.ImportBatch) (*types.ImportBatch, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(batch).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *importBatchRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.ImportBatch, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var results []*types.ImportBatch
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
