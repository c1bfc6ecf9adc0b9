package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/clearlane/invoice-extractor/internal/extract"
)

// Service turns normalized line items into downloadable CSV or XLSX bytes.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

var columns = []struct {
	header string
	value  func(extract.LineItem) string
}{
	{"Item #", func(li extract.LineItem) string { return li.ItemNumber }},
	{"SKU", func(li extract.LineItem) string { return li.SKU }},
	{"Description", func(li extract.LineItem) string { return li.Description }},
	{"HTS Code", func(li extract.LineItem) string { return li.HTSCode }},
	{"Country of Origin", func(li extract.LineItem) string { return li.CountryOfOrigin }},
	{"Quantity", func(li extract.LineItem) string { return li.Quantity }},
	{"Unit Price", func(li extract.LineItem) string { return li.UnitPrice }},
	{"Value", func(li extract.LineItem) string { return li.Value }},
	{"Net Weight", func(li extract.LineItem) string { return formatWeight(li.NetWeight) }},
	{"Gross Weight", func(li extract.LineItem) string { return formatWeight(li.GrossWeight) }},
	{"UOM", func(li extract.LineItem) string { return li.UnitOfMeasure }},
	{"Validation", func(li extract.LineItem) string { return li.ValidationStatus }},
}

// ExportCSV renders the items as RFC 4180 CSV with a header row.
func (s *Service) ExportCSV(items []extract.LineItem) ([]byte, error) {
	start := time.Now()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.header
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("csv write header: %w", err)
	}

	record := make([]string, len(columns))
	for _, li := range items {
		for i, c := range columns {
			record[i] = c.value(li)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("csv write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush: %w", err)
	}

	s.logger.Info("export.csv.ok",
		"rows", len(items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ExportXLSX returns an XLSX workbook (as bytes) with one sheet of line items.
func (s *Service) ExportXLSX(items []extract.LineItem) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Line Items"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defIndex, _ := f.GetSheetIndex("Sheet1"); defIndex != -1 && defIndex != activeIndex {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, c := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, c.header)
	}

	row := 2
	for _, li := range items {
		for i, c := range columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, c.value(li))
		}
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 8)  // item #
	_ = f.SetColWidth(sheet, "B", "B", 20) // sku
	_ = f.SetColWidth(sheet, "C", "C", 48) // description
	_ = f.SetColWidth(sheet, "D", "E", 18) // hts, coo
	_ = f.SetColWidth(sheet, "F", "H", 12) // qty, price, value
	_ = f.SetColWidth(sheet, "I", "J", 12) // weights
	_ = f.SetColWidth(sheet, "K", "L", 12) // uom, validation

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func formatWeight(w float64) string {
	if w == 0 {
		return ""
	}
	return fmt.Sprintf("%g", w)
}
