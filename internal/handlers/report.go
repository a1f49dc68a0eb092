package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lotsight/lotsight-backend/internal/reporting"
)

type ReportHandler struct {
	reportingService reporting.Service
}

func NewReportHandler(reportingService reporting.Service) *ReportHandler {
	return &ReportHandler{reportingService: reportingService}
}

// LineIssues handles GET /api/reports/line-issues?from=&to=&format=.
func (rh *ReportHandler) LineIssues(c *gin.Context) {
	from, to, ok := rh.dateRange(c)
	if !ok {
		return
	}
	rows, err := rh.reportingService.LineIssues(c.Request.Context(), from, to)
	if err != nil {
		RespondMapped(c, err)
		return
	}
	rh.respond(c, reporting.ExportLineIssues(rows, from, to))
}

// DefectTrends handles GET /api/reports/defect-trends?from=&to=&granularity=&format=.
func (rh *ReportHandler) DefectTrends(c *gin.Context) {
	from, to, ok := rh.dateRange(c)
	if !ok {
		return
	}
	granularity, err := reporting.ParseGranularity(c.DefaultQuery("granularity", string(reporting.Daily)))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_granularity", err)
		return
	}
	rows, err := rh.reportingService.DefectTrends(c.Request.Context(), from, to, granularity)
	if err != nil {
		RespondMapped(c, err)
		return
	}
	rh.respond(c, reporting.ExportDefectTrends(rows, from, to, granularity))
}

// DefectSummary handles GET /api/reports/defect-summary?format=.
func (rh *ReportHandler) DefectSummary(c *gin.Context) {
	rows, err := rh.reportingService.DefectSummary(c.Request.Context())
	if err != nil {
		RespondMapped(c, err)
		return
	}
	rh.respond(c, reporting.ExportDefectSummary(rows))
}

// ShipmentSummary handles GET /api/reports/shipment-summary?format=.
func (rh *ReportHandler) ShipmentSummary(c *gin.Context) {
	summary, err := rh.reportingService.ShipmentSummary(c.Request.Context())
	if err != nil {
		RespondMapped(c, err)
		return
	}
	rh.respond(c, reporting.ExportShipmentSummary(summary))
}

// dateRange parses from/to query params. to is exclusive; when omitted the
// range covers the trailing 30 days.
func (rh *ReportHandler) dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now.AddDate(0, 0, 1)

	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_from", fmt.Errorf("invalid from date %q", v))
			return time.Time{}, time.Time{}, false
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_to", fmt.Errorf("invalid to date %q", v))
			return time.Time{}, time.Time{}, false
		}
		to = t
	}
	if !to.After(from) {
		RespondError(c, http.StatusBadRequest, "invalid_range", fmt.Errorf("to %s must be after from %s", to.Format("2006-01-02"), from.Format("2006-01-02")))
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (rh *ReportHandler) respond(c *gin.Context, export *reporting.Export) {
	format, err := reporting.ParseFormat(c.DefaultQuery("format", string(reporting.FormatJSON)))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_format", err)
		return
	}
	payload, contentType, err := export.Render(format)
	if err != nil {
		RespondMapped(c, err)
		return
	}
	if format != reporting.FormatJSON {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", export.Meta.ReportType, format))
	}
	c.Data(http.StatusOK, contentType, payload)
}
