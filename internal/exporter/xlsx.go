package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"pollscope/pkg/contracts/domain"
)

var valueFormat = "0.0"

// WriteXLSX writes the table as a single-sheet workbook. Numbers stay
// numeric cells; absent values are written as text.
func WriteXLSX(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E7E5E4"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	valueStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &valueFormat})
	if err != nil {
		return fmt.Errorf("failed to create value style: %w", err)
	}

	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			if v == nil {
				cells[j] = Absent
			} else {
				cells[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if len(t.Headers) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Headers), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
		if len(t.Rows) > 0 {
			bottom, err := excelize.CoordinatesToCellName(len(t.Headers), len(t.Rows)+1)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, "A2", bottom, valueStyle); err != nil {
				return err
			}
		}
		lastCol, _ := excelize.ColumnNumberToName(len(t.Headers))
		if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteRankingXLSX writes a pollster ranking as a workbook
func WriteRankingXLSX(w io.Writer, source string, entries []domain.RankingEntry) error {
	return WriteXLSX(w, RankingTable(source, entries))
}

// WriteComparisonXLSX writes the cross-pollster comparison as a workbook
func WriteComparisonXLSX(w io.Writer, sources []string, rows []domain.ComparisonRow) error {
	return WriteXLSX(w, ComparisonTable(sources, rows))
}
