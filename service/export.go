package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

// ExportService renders the caller's active sheet to downloadable files.
type ExportService struct {
	sheets *SpreadsheetService
}

func NewExportService(sheets *SpreadsheetService) *ExportService {
	return &ExportService{sheets: sheets}
}

// CSV renders the sheet with the header row first.
func (s *ExportService) CSV(ctx context.Context, email string) ([]byte, error) {
	rows, err := s.sheets.FetchRows(ctx, email)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Excel renders the sheet into a single-tab workbook.
func (s *ExportService) Excel(ctx context.Context, email string) ([]byte, error) {
	rows, err := s.sheets.FetchRows(ctx, email)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow("Sheet1", cell, &values); err != nil {
			return nil, fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF renders the sheet as a landscape table, one fixed-width column per
// header cell.
func (s *ExportService) PDF(ctx context.Context, email string) ([]byte, error) {
	rows, err := s.sheets.FetchRows(ctx, email)
	if err != nil {
		return nil, err
	}

	doc := fpdf.New("L", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 8)
	doc.AddPage()

	colWidth := 270.0
	if len(rows) > 0 && len(rows[0]) > 0 {
		colWidth = 270.0 / float64(len(rows[0]))
	}

	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		doc.SetFont("Helvetica", style, 8)
		for _, cell := range row {
			doc.CellFormat(colWidth, 6, cell, "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
