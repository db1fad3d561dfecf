package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"pollscope/pkg/contracts/domain"
)

// SheetsOptions configures a SheetsFetcher
type SheetsOptions struct {
	SheetID         string
	Range           string
	APIKey          string
	CredentialsFile string
	// Endpoint overrides the API base URL
	Endpoint  string
	UserAgent string
	Client    *http.Client
}

// SheetsFetcher reads the table through the Google Sheets API v4
type SheetsFetcher struct {
	opts SheetsOptions
}

// NewSheetsFetcher creates a fetcher for a spreadsheet range
func NewSheetsFetcher(opts SheetsOptions) *SheetsFetcher {
	if opts.Range == "" {
		opts.Range = "A:D"
	}
	return &SheetsFetcher{opts: opts}
}

// Name identifies the fetcher in logs
func (f *SheetsFetcher) Name() string { return "sheets" }

func (f *SheetsFetcher) location() string {
	return fmt.Sprintf("sheets:%s!%s", f.opts.SheetID, f.opts.Range)
}

func (f *SheetsFetcher) service(ctx context.Context) (*sheets.Service, error) {
	var opts []option.ClientOption

	// A supplied client bypasses option-based auth, so the key rides on its transport.
	switch {
	case f.opts.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(f.opts.CredentialsFile))
	case f.opts.Client != nil:
		client := f.opts.Client
		if f.opts.APIKey != "" {
			base := client.Transport
			if base == nil {
				base = http.DefaultTransport
			}
			client = &http.Client{
				Transport: &transport.APIKey{Key: f.opts.APIKey, Transport: base},
				Timeout:   client.Timeout,
			}
		}
		opts = append(opts, option.WithHTTPClient(client))
	case f.opts.APIKey != "":
		opts = append(opts, option.WithAPIKey(f.opts.APIKey))
	default:
		opts = append(opts, option.WithoutAuthentication())
	}
	if f.opts.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(f.opts.Endpoint))
	}
	if f.opts.UserAgent != "" {
		opts = append(opts, option.WithUserAgent(f.opts.UserAgent))
	}

	return sheets.NewService(ctx, opts...)
}

// Fetch reads the configured range; the first row is the header
func (f *SheetsFetcher) Fetch(ctx context.Context) ([]domain.RawRow, error) {
	svc, err := f.service(ctx)
	if err != nil {
		return nil, &TransportError{Op: "fetch", URL: f.location(), Err: err}
	}

	resp, err := svc.Spreadsheets.Values.Get(f.opts.SheetID, f.opts.Range).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		te := &TransportError{Op: "fetch", URL: f.location(), Err: err}
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			te.StatusCode = gerr.Code
		}
		return nil, te
	}

	records := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		records[i] = make([]string, len(row))
		for j, cell := range row {
			records[i][j] = cellText(cell)
		}
	}
	return rowsFromRecords(records), nil
}

func cellText(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}
