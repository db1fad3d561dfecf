package fetcher

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"net/http"

	"pollscope/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVFetcher reads a spreadsheet published as CSV (output=csv)
type CSVFetcher struct {
	url       string
	client    *http.Client
	userAgent string
}

// NewCSVFetcher creates a fetcher for a published CSV export
func NewCSVFetcher(url string, client *http.Client, userAgent string) *CSVFetcher {
	return &CSVFetcher{url: url, client: client, userAgent: userAgent}
}

// Name identifies the fetcher in logs
func (f *CSVFetcher) Name() string { return "csv" }

// Fetch downloads the export and parses it with the first line as header
func (f *CSVFetcher) Fetch(ctx context.Context) ([]domain.RawRow, error) {
	body, err := httpGet(ctx, f.client, f.url, f.userAgent)
	if err != nil {
		return nil, err
	}

	rows, err := ParseCSV(bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "parse", URL: f.url, Err: err}
	}
	return rows, nil
}

// ParseCSV decodes comma separated text with a header line. Rows may have
// fewer or more cells than the header.
func ParseCSV(r io.Reader) ([]domain.RawRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return rowsFromRecords(records), nil
}
