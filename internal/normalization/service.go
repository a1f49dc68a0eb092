package normalization

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/repos"
	"github.com/lotsight/lotsight-backend/internal/types"
)

// Service normalizes identifiers and keeps the audit trail. Every Record
// call appends exactly one audit row, repeats included, so the table
// mirrors import history rather than distinct identifiers.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, raw string) (string, *types.NormalizationAudit, error)
	AuditTrail(ctx context.Context, canonical string) ([]*types.NormalizationAudit, error)
}

type service struct {
	db        *gorm.DB
	log       *logger.Logger
	auditRepo repos.NormalizationAuditRepo
}

func NewService(db *gorm.DB, baseLog *logger.Logger, auditRepo repos.NormalizationAuditRepo) Service {
	serviceLog := baseLog.With("service", "NormalizationService")
	return &service{db: db, log: serviceLog, auditRepo: auditRepo}
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, raw string) (string, *types.NormalizationAudit, error) {
	canonical, err := Normalize(raw)
	if err != nil {
		audit := &types.NormalizationAudit{
			ID:               uuid.New(),
			OriginalLotID:    raw,
			NormalizedLotID:  "",
			ValidationStatus: types.ValidationUnmatched,
			FlagReason:       err.Error(),
			CreatedAt:        time.Now(),
		}
		if _, appendErr := s.auditRepo.Append(ctx, tx, []*types.NormalizationAudit{audit}); appendErr != nil {
			s.log.Error("Failed to append audit for empty identifier", "error", appendErr)
			return "", nil, appendErr
		}
		return "", audit, err
	}

	status := types.ValidationValid
	reason := ""
	if suspicious, why := FormatSuspicion(canonical); suspicious {
		status = types.ValidationAmbiguous
		reason = why
	} else {
		seen, err := s.auditRepo.DistinctOriginalsByNormalized(ctx, tx, canonical)
		if err != nil {
			s.log.Error("Failed to load seen raw forms", "canonical", canonical, "error", err)
			return "", nil, err
		}
		if conflicting, why := ConflictsWithSeen(raw, seen); conflicting {
			status = types.ValidationAmbiguous
			reason = why
		}
	}

	audit := &types.NormalizationAudit{
		ID:               uuid.New(),
		OriginalLotID:    raw,
		NormalizedLotID:  canonical,
		ValidationStatus: status,
		FlagReason:       reason,
		CreatedAt:        time.Now(),
	}
	if _, err := s.auditRepo.Append(ctx, tx, []*types.NormalizationAudit{audit}); err != nil {
		s.log.Error("Failed to append normalization audit", "canonical", canonical, "error", err)
		return "", nil, err
	}
	if status == types.ValidationAmbiguous {
		s.log.Warn("Ambiguous lot identifier", "raw", raw, "canonical", canonical, "reason", reason)
	}
	return canonical, audit, nil
}

func (s *service) AuditTrail(ctx context.Context, canonical string) ([]*types.NormalizationAudit, error) {
	return s.auditRepo.ListByNormalized(ctx, nil, canonical)
}
