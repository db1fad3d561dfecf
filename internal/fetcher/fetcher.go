// Package fetcher retrieves the published poll table and turns it into
// untyped rows keyed by header name. Fetchers never validate rows; that is
// left to the normalizer.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pollscope/internal/config"
	"pollscope/pkg/contracts/domain"
)

// Fetcher retrieves the full source table in one call
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.RawRow, error)
	Name() string
}

// New selects a fetcher for the configured source format. A nil client
// gets a default one with the source timeout.
func New(cfg config.SourceConfig, client *http.Client) (Fetcher, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	switch strings.ToLower(cfg.Format) {
	case config.FormatCSV, "":
		return NewCSVFetcher(cfg.URL, client, cfg.UserAgent), nil
	case config.FormatXLSX:
		return NewXLSXFetcher(cfg.URL, cfg.SheetName, client, cfg.UserAgent), nil
	case config.FormatSheets:
		return NewSheetsFetcher(SheetsOptions{
			SheetID:         cfg.SheetID,
			Range:           cfg.Range,
			APIKey:          cfg.APIKey,
			CredentialsFile: cfg.CredentialsFile,
			Endpoint:        cfg.Endpoint,
			UserAgent:       cfg.UserAgent,
			Client:          client,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported source format: %q", cfg.Format)
	}
}

// httpGet performs a GET and returns the body of a 2xx response
func httpGet(ctx context.Context, client *http.Client, url, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Op: "fetch", URL: url, Err: err}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "fetch", URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &TransportError{Op: "fetch", URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read", URL: url, Err: err}
	}
	return body, nil
}

// rowsFromRecords maps records onto the header in the first record.
// Blank records are skipped, missing trailing cells leave their key unset
// and cells beyond the header are dropped.
func rowsFromRecords(records [][]string) []domain.RawRow {
	var (
		header []string
		rows   []domain.RawRow
	)

	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		if header == nil {
			header = make([]string, len(rec))
			for i, h := range rec {
				header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
			}
			continue
		}

		row := make(domain.RawRow, len(header))
		for i, cell := range rec {
			if i >= len(header) {
				break
			}
			if header[i] == "" {
				continue
			}
			row[header[i]] = cell
		}
		rows = append(rows, row)
	}

	if rows == nil {
		rows = []domain.RawRow{}
	}
	return rows
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
