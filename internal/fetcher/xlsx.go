package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/xuri/excelize/v2"

	"pollscope/pkg/contracts/domain"
)

// XLSXFetcher reads a spreadsheet published as a workbook (output=xlsx)
type XLSXFetcher struct {
	url       string
	sheet     string
	client    *http.Client
	userAgent string
}

// NewXLSXFetcher creates a fetcher for a published workbook export. An
// empty sheet name selects the first worksheet.
func NewXLSXFetcher(url, sheet string, client *http.Client, userAgent string) *XLSXFetcher {
	return &XLSXFetcher{url: url, sheet: sheet, client: client, userAgent: userAgent}
}

// Name identifies the fetcher in logs
func (f *XLSXFetcher) Name() string { return "xlsx" }

// Fetch downloads the workbook and reads the configured sheet
func (f *XLSXFetcher) Fetch(ctx context.Context) ([]domain.RawRow, error) {
	body, err := httpGet(ctx, f.client, f.url, f.userAgent)
	if err != nil {
		return nil, err
	}

	rows, err := ParseXLSX(bytes.NewReader(body), f.sheet)
	if err != nil {
		return nil, &TransportError{Op: "parse", URL: f.url, Err: err}
	}
	return rows, nil
}

// ParseXLSX reads one worksheet of a workbook with the first non-blank row
// as header. Cells are taken as formatted text.
func ParseXLSX(r io.Reader, sheet string) ([]domain.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rowsFromRecords(records), nil
}
