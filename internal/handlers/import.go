package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lotsight/lotsight-backend/internal/apierr"
	"github.com/lotsight/lotsight-backend/internal/ingestion"
	"github.com/lotsight/lotsight-backend/internal/repos"
	"github.com/lotsight/lotsight-backend/internal/types"
)

type ImportHandler struct {
	importService ingestion.Service
	batchRepo     repos.ImportBatchRepo
	maxUploadMB   int
}

func NewImportHandler(importService ingestion.Service, batchRepo repos.ImportBatchRepo, maxUploadMB int) *ImportHandler {
	return &ImportHandler{importService: importService, batchRepo: batchRepo, maxUploadMB: maxUploadMB}
}

// ImportFile handles POST /api/imports/:source with a multipart "file"
// field. A schema mismatch rejects the whole upload; row failures come
// back in the result body.
func (ih *ImportHandler) ImportFile(c *gin.Context) {
	source := types.SourceType(c.Param("source"))
	if !source.Valid() {
		RespondMapped(c, apierr.New(http.StatusBadRequest, "unknown_source", errInvalidSource(source)))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondMapped(c, apierr.New(http.StatusBadRequest, "missing_file", err))
		return
	}
	if ih.maxUploadMB > 0 && fileHeader.Size > int64(ih.maxUploadMB)<<20 {
		RespondMapped(c, apierr.New(http.StatusRequestEntityTooLarge, "file_too_large", errFileTooLarge(ih.maxUploadMB)))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		RespondMapped(c, apierr.New(http.StatusBadRequest, "unreadable_file", err))
		return
	}
	defer f.Close()

	result, err := ih.importService.ImportReader(c.Request.Context(), source, fileHeader.Filename, f)
	if err != nil {
		RespondMapped(c, err)
		return
	}
	RespondOK(c, gin.H{"result": result})
}

// ListBatches handles GET /api/imports.
func (ih *ImportHandler) ListBatches(c *gin.Context) {
	batches, err := ih.batchRepo.ListRecent(c.Request.Context(), nil, 50)
	if err != nil {
		RespondMapped(c, err)
		return
	}
	RespondOK(c, gin.H{"batches": batches})
}

func errInvalidSource(source types.SourceType) error {
	return fmt.Errorf("unknown source type %q", source)
}

func errFileTooLarge(limitMB int) error {
	return fmt.Errorf("uploaded file exceeds %dMB limit", limitMB)
}
