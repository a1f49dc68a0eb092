package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lotsight/lotsight-backend/internal/repos"
)

// Meta describes a report payload: what it is, the range it covers and
// when it was generated.
type Meta struct {
	ReportType  string    `json:"report_type"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to,omitempty"`
	Granularity string    `json:"granularity,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Export is a serializable report: meta plus rows. JSON uses the typed
// rows; CSV and XLSX use the flat column/record form with the documented
// stable column order.
type Export struct {
	Meta    Meta
	Columns []string
	Records [][]string
	Rows    interface{}
}

func (e *Export) JSON() ([]byte, error) {
	doc := struct {
		Meta Meta        `json:"meta"`
		Rows interface{} `json:"rows"`
	}{Meta: e.Meta, Rows: e.Rows}
	return json.MarshalIndent(doc, "", "  ")
}

// CSV renders a header row plus one record per row, RFC 4180 quoting.
func (e *Export) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(e.Columns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(e.Records); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Export) XLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(e.Columns))
	for i, c := range e.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, rec := range e.Records {
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const dateLayout = "2006-01-02"

// ExportLineIssues columns, in order: production_line, total_records,
// issue_count, affected_lots, total_quantity.
func ExportLineIssues(rows []LineIssueRow, from, to time.Time) *Export {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.ProductionLine,
			strconv.Itoa(r.TotalRecords),
			strconv.Itoa(r.IssueCount),
			strconv.Itoa(r.AffectedLots),
			strconv.Itoa(r.TotalQuantity),
		})
	}
	return &Export{
		Meta: Meta{
			ReportType:  "production-line-issues",
			From:        from.Format(dateLayout),
			To:          to.Format(dateLayout),
			GeneratedAt: time.Now(),
		},
		Columns: []string{"production_line", "total_records", "issue_count", "affected_lots", "total_quantity"},
		Records: records,
		Rows:    rows,
	}
}

// ExportDefectTrends columns, in order: bucket_start, defect_type,
// defect_count, inspection_events.
func ExportDefectTrends(rows []TrendRow, from, to time.Time, g Granularity) *Export {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.BucketStart.Format(dateLayout),
			r.DefectType,
			strconv.Itoa(r.DefectCount),
			strconv.Itoa(r.InspectionEvents),
		})
	}
	return &Export{
		Meta: Meta{
			ReportType:  "defect-trends",
			From:        from.Format(dateLayout),
			To:          to.Format(dateLayout),
			Granularity: string(g),
			GeneratedAt: time.Now(),
		},
		Columns: []string{"bucket_start", "defect_type", "defect_count", "inspection_events"},
		Records: records,
		Rows:    rows,
	}
}

// ExportShipmentSummary columns, in order: shipment_status, lot_count. A
// final "not shipped" record carries the lots with no shipping record at
// all.
func ExportShipmentSummary(summary *ShipmentSummary) *Export {
	records := make([][]string, 0, len(summary.StatusCounts)+1)
	for _, c := range summary.StatusCounts {
		records = append(records, []string{c.ShipmentStatus, strconv.Itoa(c.LotCount)})
	}
	records = append(records, []string{"not shipped", strconv.Itoa(summary.NotShippedLots)})
	return &Export{
		Meta: Meta{
			ReportType:  "shipment-status-summary",
			GeneratedAt: time.Now(),
		},
		Columns: []string{"shipment_status", "lot_count"},
		Records: records,
		Rows:    summary,
	}
}

// ExportDefectSummary columns, in order: defect_type, total_defects,
// affected_lots.
func ExportDefectSummary(rows []repos.DefectTypeTotal) *Export {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.DefectType,
			strconv.Itoa(r.TotalDefects),
			strconv.Itoa(r.AffectedLots),
		})
	}
	return &Export{
		Meta: Meta{
			ReportType:  "defect-summary",
			GeneratedAt: time.Now(),
		},
		Columns: []string{"defect_type", "total_defects", "affected_lots"},
		Records: records,
		Rows:    rows,
	}
}

// Format selects an export serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV, FormatXLSX:
		return Format(s), nil
	case "":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("invalid format %q (want json, csv or xlsx)", s)
}

// Render serializes the export in the requested format and returns the
// payload with its content type.
func (e *Export) Render(f Format) ([]byte, string, error) {
	switch f {
	case FormatCSV:
		b, err := e.CSV()
		return b, "text/csv", err
	case FormatXLSX:
		b, err := e.XLSX()
		return b, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	default:
		b, err := e.JSON()
		return b, "application/json", err
	}
}
