package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/types"
)

type ProductionLineRepo interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, name string) (*types.ProductionLine, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.ProductionLine, error)
}

type productionLineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductionLineRepo(db *gorm.DB, baseLog *logger.Logger) ProductionLineRepo {
	repoLog := baseLog.With("repo", "ProductionLineRepo")
	return &productionLineRepo{db: db, log: repoLog}
}

func (r *productionLineRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, name string) (*types.ProductionLine, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	line := &types.ProductionLine{ID: uuid.New(), Name: name}
	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(line)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		return line, nil
	}

	var existing types.ProductionLine
	if err := transaction.WithContext(ctx).
		Where("name = ?", name).
		First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *productionLineRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.ProductionLine, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var lines []*types.ProductionLine
	if err := transaction.WithContext(ctx).
		Order("name").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
