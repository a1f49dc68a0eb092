package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/types"
)

type DefectTypeRepo interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, name string) (*types.DefectType, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.DefectType, error)
}

type defectTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDefectTypeRepo(db *gorm.DB, baseLog *logger.Logger) DefectTypeRepo {
	repoLog := baseLog.With("repo", "DefectTypeRepo")
	return &defectTypeRepo{db: db, log: repoLog}
}

func (r *defectTypeRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, name string) (*types.DefectType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	dt := &types.DefectType{ID: uuid.New(), Name: name}
	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(dt)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		return dt, nil
	}

	var existing types.DefectType
	if err := transaction.WithContext(ctx).
		Where("name = ?", name).
		First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *defectTypeRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.DefectType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var dts []*types.DefectType
	if err := transaction.WithContext(ctx).
		Order("name").
		Find(&dts).Error; err != nil {
		return nil, err
	}
	return dts, nil
}
