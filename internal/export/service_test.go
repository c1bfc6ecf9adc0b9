package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/clearlane/invoice-extractor/internal/extract"
)

func testItems() []extract.LineItem {
	return []extract.LineItem{
		{
			ItemNumber:      "1",
			SKU:             "WIDGET-100",
			Description:     "Steel widget",
			HTSCode:         "7326.90.8688",
			CountryOfOrigin: "Germany",
			Quantity:        "5",
			UnitPrice:       "2.00",
			Value:           "$10.00",
			NetWeight:       1.5,
			GrossWeight:     2,
			UnitOfMeasure:   "EA",
		},
		{
			ItemNumber:      "2",
			Description:     "Part without SKU",
			HTSCode:         "N/A",
			CountryOfOrigin: "N/A",
			Quantity:        "1",
			UnitPrice:       "3.50",
			Value:           "$3.50",
			UnitOfMeasure:   "EA",
		},
	}
}

func TestExportCSV(t *testing.T) {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))

	data, err := svc.ExportCSV(testItems())
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "Item #" || records[0][1] != "SKU" {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[1][1] != "WIDGET-100" || records[1][7] != "$10.00" {
		t.Errorf("unexpected first row %v", records[1])
	}
	if records[2][1] != "" {
		t.Errorf("empty SKU must stay empty, got %q", records[2][1])
	}
}

func TestExportXLSX(t *testing.T) {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))

	data, err := svc.ExportXLSX(testItems())
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Line Items")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][2] != "Steel widget" {
		t.Errorf("unexpected description cell %q", rows[1][2])
	}
	if rows[2][7] != "$3.50" {
		t.Errorf("unexpected value cell %q", rows[2][7])
	}
}
