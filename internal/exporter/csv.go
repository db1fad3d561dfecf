package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"pollscope/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the table as CSV with a UTF-8 BOM so Excel detects the
// encoding of accented names
func WriteCSV(w io.Writer, t *Table) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(t.Headers))
	for i, row := range t.Rows {
		record = record[:0]
		for _, cell := range row {
			record = append(record, formatCell(cell))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteRankingCSV writes a pollster ranking as CSV
func WriteRankingCSV(w io.Writer, source string, entries []domain.RankingEntry) error {
	return WriteCSV(w, RankingTable(source, entries))
}

// WriteComparisonCSV writes the cross-pollster comparison as CSV
func WriteComparisonCSV(w io.Writer, sources []string, rows []domain.ComparisonRow) error {
	return WriteCSV(w, ComparisonTable(sources, rows))
}

// Write renders the table in the given format
func Write(w io.Writer, format Format, t *Table) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	default:
		return fmt.Errorf("unsupported export format: %q", format)
	}
}
