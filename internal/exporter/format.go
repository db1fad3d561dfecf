package exporter

import (
	"fmt"
	"strconv"
	"strings"
)

// Absent is written in place of a missing poll value
const Absent = "—"

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts a format name or file extension, case insensitive
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(s, "."))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// formatFloat formats a poll value with one decimal place
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

// formatCell renders a table cell as CSV text
func formatCell(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return Absent
	case string:
		return c
	case float64:
		return formatFloat(c)
	case int:
		return strconv.Itoa(c)
	default:
		return fmt.Sprint(c)
	}
}
