package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lotsight/lotsight-backend/internal/types"
	"github.com/lotsight/lotsight-backend/internal/validation"
)

type ValidationHandler struct {
	validationService validation.Service
}

func NewValidationHandler(validationService validation.Service) *ValidationHandler {
	return &ValidationHandler{validationService: validationService}
}

// Run handles POST /api/validation/run. Re-running is safe: already
// recorded discrepancies are not duplicated.
func (vh *ValidationHandler) Run(c *gin.Context) {
	report, err := vh.validationService.ValidateAll(c.Request.Context())
	if err != nil {
		RespondMapped(c, err)
		return
	}
	RespondOK(c, gin.H{"report": report})
}

// ListDiscrepancies handles GET /api/discrepancies?status=open&limit=100.
func (vh *ValidationHandler) ListDiscrepancies(c *gin.Context) {
	status := types.ResolutionStatus(c.DefaultQuery("status", string(types.ResolutionOpen)))
	if !status.Valid() {
		RespondError(c, http.StatusBadRequest, "invalid_status", errInvalidResolution(status))
		return
	}
	limit := 100
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			RespondError(c, http.StatusBadRequest, "invalid_limit", fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}
	discrepancies, err := vh.validationService.ListDiscrepancies(c.Request.Context(), status, limit)
	if err != nil {
		RespondMapped(c, err)
		return
	}
	RespondOK(c, gin.H{"discrepancies": discrepancies})
}

type resolveRequest struct {
	Status types.ResolutionStatus `json:"status" binding:"required"`
}

// Resolve handles PATCH /api/discrepancies/:id.
func (vh *ValidationHandler) Resolve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if !req.Status.Valid() {
		RespondError(c, http.StatusBadRequest, "invalid_status", errInvalidResolution(req.Status))
		return
	}
	if err := vh.validationService.Resolve(c.Request.Context(), id, req.Status); err != nil {
		RespondMapped(c, err)
		return
	}
	RespondOK(c, gin.H{"id": id, "status": req.Status})
}

func errInvalidResolution(status types.ResolutionStatus) error {
	return fmt.Errorf("unknown resolution status %q", status)
}
