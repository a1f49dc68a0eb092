package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lotsight/lotsight-backend/internal/consolidation"
	"github.com/lotsight/lotsight-backend/internal/normalization"
	"github.com/lotsight/lotsight-backend/internal/reporting"
)

type LotHandler struct {
	consolidationService consolidation.Service
	reportingService     reporting.Service
	normalizer           normalization.Service
}

func NewLotHandler(consolidationService consolidation.Service, reportingService reporting.Service, normalizer normalization.Service) *LotHandler {
	return &LotHandler{
		consolidationService: consolidationService,
		reportingService:     reportingService,
		normalizer:           normalizer,
	}
}

// GetConsolidated handles GET /api/lots/:id/consolidated. The path id is
// any raw or canonical form of the lot identifier.
func (lh *LotHandler) GetConsolidated(c *gin.Context) {
	view, err := lh.consolidationService.BuildConsolidatedView(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondMapped(c, err)
		return
	}
	RespondOK(c, gin.H{"lot": view})
}

// GetShipmentStatus handles GET /api/lots/:id/shipment-status.
func (lh *LotHandler) GetShipmentStatus(c *gin.Context) {
	status, err := lh.reportingService.ShipmentStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondMapped(c, err)
		return
	}
	RespondOK(c, gin.H{"shipment_status": status})
}

// GetAuditTrail handles GET /api/lots/:id/audit. It returns every
// normalization event recorded for the canonical identifier.
func (lh *LotHandler) GetAuditTrail(c *gin.Context) {
	canonical, err := normalization.Normalize(c.Param("id"))
	if err != nil {
		RespondMapped(c, err)
		return
	}
	entries, err := lh.normalizer.AuditTrail(c.Request.Context(), canonical)
	if err != nil {
		RespondMapped(c, err)
		return
	}
	RespondOK(c, gin.H{"canonical_id": canonical, "audit": entries})
}
