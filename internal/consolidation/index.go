package consolidation

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotsight/lotsight-backend/internal/logger"
	"github.com/lotsight/lotsight-backend/internal/repos"
)

// LotIndex is the in-process canonical-identifier index: a rebuildable
// cache of canonical id -> lot id over the lot table. The table's unique
// constraint is the source of truth; the index only buys O(1) lookups for
// the read paths.
type LotIndex struct {
	mu      sync.RWMutex
	byID    map[string]uuid.UUID
	log     *logger.Logger
	lotRepo repos.LotRepo
}

func NewLotIndex(baseLog *logger.Logger, lotRepo repos.LotRepo) *LotIndex {
	return &LotIndex{
		byID:    make(map[string]uuid.UUID),
		log:     baseLog.With("component", "LotIndex"),
		lotRepo: lotRepo,
	}
}

// Rebuild replaces the whole index from the lot table.
func (ix *LotIndex) Rebuild(ctx context.Context) error {
	lots, err := ix.lotRepo.ListAll(ctx, nil)
	if err != nil {
		return err
	}
	fresh := make(map[string]uuid.UUID, len(lots))
	for _, lot := range lots {
		fresh[lot.CanonicalID] = lot.ID
	}
	ix.mu.Lock()
	ix.byID = fresh
	ix.mu.Unlock()
	ix.log.Info("Lot index rebuilt", "entries", len(fresh))
	return nil
}

func (ix *LotIndex) Lookup(canonical string) (uuid.UUID, bool) {
	ix.mu.RLock()
	id, ok := ix.byID[canonical]
	ix.mu.RUnlock()
	return id, ok
}

func (ix *LotIndex) put(canonical string, id uuid.UUID) {
	ix.mu.Lock()
	ix.byID[canonical] = id
	ix.mu.Unlock()
}

// Resolve returns the lot id for the canonical identifier, creating the
// lot if it does not exist. The database upsert serializes concurrent
// resolution of the same identifier; distinct identifiers never contend on
// anything beyond the map write.
func (ix *LotIndex) Resolve(ctx context.Context, tx *gorm.DB, canonical string, wasNormalized bool) (uuid.UUID, bool, error) {
	if id, ok := ix.Lookup(canonical); ok {
		return id, false, nil
	}
	lot, created, err := ix.lotRepo.ResolveOrCreate(ctx, tx, canonical, wasNormalized)
	if err != nil {
		return uuid.Nil, false, err
	}
	ix.put(canonical, lot.ID)
	return lot.ID, created, nil
}

func (ix *LotIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byID)
}
