package fetcher

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pollscope/internal/config"
	apierrors "pollscope/internal/errors"
	"pollscope/pkg/contracts/domain"
)

const pollCSV = `Encuestadora,Periodo,Candidato,Valor
DATUM,Ene-26,A,10
DATUM,Feb-26,A,12
DATUM,Ene-26,B,8
`

func serve(t *testing.T, status int, contentType string, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []domain.RawRow
	}{
		{
			name:  "header and rows",
			input: "Encuestadora,Periodo,Candidato,Valor\nDATUM,Ene-26,A,10\n",
			want: []domain.RawRow{
				{"Encuestadora": "DATUM", "Periodo": "Ene-26", "Candidato": "A", "Valor": "10"},
			},
		},
		{
			name:  "byte order mark",
			input: "\ufeffEncuestadora,Periodo,Candidato,Valor\nIPSOS,Mar-26,B,7\n",
			want: []domain.RawRow{
				{"Encuestadora": "IPSOS", "Periodo": "Mar-26", "Candidato": "B", "Valor": "7"},
			},
		},
		{
			name:  "short row leaves keys unset",
			input: "Encuestadora,Periodo,Candidato,Valor\nDATUM,Ene-26\n",
			want: []domain.RawRow{
				{"Encuestadora": "DATUM", "Periodo": "Ene-26"},
			},
		},
		{
			name:  "extra cells are dropped",
			input: "Encuestadora,Periodo,Candidato,Valor\nDATUM,Ene-26,A,10,extra\n",
			want: []domain.RawRow{
				{"Encuestadora": "DATUM", "Periodo": "Ene-26", "Candidato": "A", "Valor": "10"},
			},
		},
		{
			name:  "quoted decimal comma",
			input: "Encuestadora,Periodo,Candidato,Valor\nCPI,Abr-26,C,\"12,5\"\n",
			want: []domain.RawRow{
				{"Encuestadora": "CPI", "Periodo": "Abr-26", "Candidato": "C", "Valor": "12,5"},
			},
		},
		{
			name:  "blank lines and padded header",
			input: "\n Encuestadora , Periodo ,Candidato,Valor\n,,,\nDATUM,Ene-26,A,10\n",
			want: []domain.RawRow{
				{"Encuestadora": "DATUM", "Periodo": "Ene-26", "Candidato": "A", "Valor": "10"},
			},
		},
		{
			name:  "header only",
			input: "Encuestadora,Periodo,Candidato,Valor\n",
			want:  []domain.RawRow{},
		},
		{
			name:  "empty body",
			input: "",
			want:  []domain.RawRow{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ParseCSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestParseCSV_Malformed(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Encuestadora,Periodo\n\"DATUM,Ene-26\n"))
	assert.Error(t, err)
}

func TestCSVFetcher(t *testing.T) {
	t.Run("fetches and parses", func(t *testing.T) {
		var gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "text/csv")
			w.Write([]byte(pollCSV))
		}))
		defer srv.Close()

		f := NewCSVFetcher(srv.URL, srv.Client(), "pollscope-test")
		rows, err := f.Fetch(context.Background())
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Feb-26", rows[1]["Periodo"])
		assert.Equal(t, "pollscope-test", gotUA)
		assert.Equal(t, "csv", f.Name())
	})

	t.Run("non 2xx is a transport error", func(t *testing.T) {
		srv := serve(t, http.StatusNotFound, "text/plain", []byte("gone"))

		_, err := NewCSVFetcher(srv.URL, srv.Client(), "").Fetch(context.Background())
		require.Error(t, err)

		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusNotFound, te.StatusCode)
		assert.Equal(t, "fetch", te.Op)
		assert.Equal(t, srv.URL, te.URL)
		assert.Contains(t, err.Error(), "404 Not Found")
	})

	t.Run("unparseable body is a transport error", func(t *testing.T) {
		srv := serve(t, http.StatusOK, "text/csv", []byte("a,b\n\"x,y\n"))

		_, err := NewCSVFetcher(srv.URL, srv.Client(), "").Fetch(context.Background())
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "parse", te.Op)
		assert.Zero(t, te.StatusCode)
	})

	t.Run("network failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewCSVFetcher(url, http.DefaultClient, "").Fetch(context.Background())
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "fetch", te.Op)
		assert.Error(t, te.Unwrap())
	})

	t.Run("context deadline", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := NewCSVFetcher(srv.URL, srv.Client(), "").Fetch(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestTransportError_Upstream(t *testing.T) {
	var err error = &TransportError{Op: "fetch", URL: "https://example.test/pub", StatusCode: 503}

	var up apierrors.UpstreamError
	require.True(t, errors.As(err, &up))
	assert.Equal(t, "https://example.test/pub", up.UpstreamURL())
	assert.Equal(t, 503, up.UpstreamStatus())

	wrapped := &TransportError{Op: "read", URL: "u", Err: context.Canceled}
	assert.ErrorIs(t, wrapped, context.Canceled)
	assert.Equal(t, "read u: context canceled", wrapped.Error())
	assert.Equal(t, "parse u failed", (&TransportError{Op: "parse", URL: "u"}).Error())
}

func workbook(t *testing.T, sheet string, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseXLSX(t *testing.T) {
	data := workbook(t, "Sheet1", [][]interface{}{
		{"Encuestadora", "Periodo", "Candidato", "Valor"},
		{"DATUM", "Ene-26", "A", 10},
		{"DATUM", "Feb-26", "A", "12,5"},
	})

	rows, err := ParseXLSX(bytes.NewReader(data), "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.RawRow{"Encuestadora": "DATUM", "Periodo": "Ene-26", "Candidato": "A", "Valor": "10"}, rows[0])
	assert.Equal(t, "12,5", rows[1]["Valor"])
}

func TestParseXLSX_NamedSheet(t *testing.T) {
	data := workbook(t, "Encuestas", [][]interface{}{
		{"Encuestadora", "Periodo", "Candidato", "Valor"},
		{"IPSOS", "Mar-26", "B", 7},
	})

	rows, err := ParseXLSX(bytes.NewReader(data), "Encuestas")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "IPSOS", rows[0]["Encuestadora"])

	_, err = ParseXLSX(bytes.NewReader(data), "Missing")
	assert.Error(t, err)
}

func TestXLSXFetcher(t *testing.T) {
	data := workbook(t, "Sheet1", [][]interface{}{
		{"Encuestadora", "Periodo", "Candidato", "Valor"},
		{"CPI", "Abr-26", "C", 3},
	})
	srv := serve(t, http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)

	f := NewXLSXFetcher(srv.URL, "", srv.Client(), "")
	rows, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "3", rows[0]["Valor"])
	assert.Equal(t, "xlsx", f.Name())

	t.Run("corrupt workbook", func(t *testing.T) {
		bad := serve(t, http.StatusOK, "application/octet-stream", []byte("not a zip"))
		_, err := NewXLSXFetcher(bad.URL, "", bad.Client(), "").Fetch(context.Background())
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "parse", te.Op)
	})
}

func TestSheetsFetcher(t *testing.T) {
	t.Run("reads values range", func(t *testing.T) {
		var gotPath, gotKey string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.URL.Query().Get("key")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"range": "Hoja1!A1:D3",
				"majorDimension": "ROWS",
				"values": [
					["Encuestadora", "Periodo", "Candidato", "Valor"],
					["DATUM", "Ene-26", "A", "10"],
					["DATUM", "Feb-26", "A"]
				]
			}`))
		}))
		defer srv.Close()

		f := NewSheetsFetcher(SheetsOptions{
			SheetID:  "sheet-123",
			APIKey:   "secret",
			Endpoint: srv.URL + "/",
			Client:   srv.Client(),
		})
		rows, err := f.Fetch(context.Background())
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "10", rows[0]["Valor"])
		_, hasValue := rows[1]["Valor"]
		assert.False(t, hasValue)

		assert.Contains(t, gotPath, "/v4/spreadsheets/sheet-123/values/")
		assert.Equal(t, "secret", gotKey)
		assert.Equal(t, "sheets", f.Name())
	})

	t.Run("api error keeps status", func(t *testing.T) {
		srv := serve(t, http.StatusForbidden, "application/json",
			[]byte(`{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`))

		_, err := NewSheetsFetcher(SheetsOptions{
			SheetID:  "private",
			Endpoint: srv.URL + "/",
			Client:   srv.Client(),
		}).Fetch(context.Background())

		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusForbidden, te.StatusCode)
		assert.Equal(t, "sheets:private!A:D", te.URL)
	})
}

func TestNew(t *testing.T) {
	base := config.Default().Source

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr bool
	}{
		{name: "default is csv", format: "", want: "csv"},
		{name: "csv", format: config.FormatCSV, want: "csv"},
		{name: "xlsx", format: config.FormatXLSX, want: "xlsx"},
		{name: "upper case", format: "XLSX", want: "xlsx"},
		{name: "sheets", format: config.FormatSheets, want: "sheets"},
		{name: "unknown", format: "parquet", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Format = tt.format

			f, err := New(cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Name())
		})
	}
}
