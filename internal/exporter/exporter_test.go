package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pollscope/pkg/contracts/domain"
)

func fp(v float64) *float64 { return &v }

var (
	rankingFixture = []domain.RankingEntry{
		{Rank: 1, Candidate: "Keiko Fujimori", Party: "Fuerza Popular", LastValue: 12, Trend: 2},
		{Rank: 2, Candidate: "Rafael López Aliaga", Party: "Renovación Popular", LastValue: 8.25, Trend: -1.5},
	}
	comparisonSources = []string{"DATUM", "IPSOS"}
	comparisonFixture = []domain.ComparisonRow{
		{Candidate: "Keiko Fujimori", PerSource: map[string]*float64{"DATUM": fp(12), "IPSOS": fp(11)}, Mean: 11.5, Present: 2},
		{Candidate: "César Acuña", PerSource: map[string]*float64{"DATUM": nil, "IPSOS": fp(5)}, Mean: 5, Present: 1},
		{Candidate: "Ghost", PerSource: map[string]*float64{"DATUM": nil, "IPSOS": nil}, Mean: 0, Present: 0},
	}
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(data, utf8BOM), "missing BOM")
	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteRankingCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRankingCSV(&buf, "DATUM", rankingFixture))

	assert.Equal(t, [][]string{
		{"Puesto", "Candidato", "Partido", "Valor", "Tendencia"},
		{"1", "Keiko Fujimori", "Fuerza Popular", "12.0", "2.0"},
		{"2", "Rafael López Aliaga", "Renovación Popular", "8.2", "-1.5"},
	}, readCSV(t, buf.Bytes()))
}

func TestWriteComparisonCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComparisonCSV(&buf, comparisonSources, comparisonFixture))

	assert.Equal(t, [][]string{
		{"Candidato", "DATUM", "IPSOS", "Promedio"},
		{"Keiko Fujimori", "12.0", "11.0", "11.5"},
		{"César Acuña", "—", "5.0", "5.0"},
		{"Ghost", "—", "—", "—"},
	}, readCSV(t, buf.Bytes()))
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRankingCSV(&buf, "CPI", nil))
	assert.Equal(t, [][]string{{"Puesto", "Candidato", "Partido", "Valor", "Tendencia"}}, readCSV(t, buf.Bytes()))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV_WriterError(t *testing.T) {
	err := WriteRankingCSV(failingWriter{}, "DATUM", rankingFixture)
	assert.ErrorContains(t, err, "disk full")
}

func TestWriteComparisonXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComparisonXLSX(&buf, comparisonSources, comparisonFixture))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Comparativa"}, f.GetSheetList())

	rows, err := f.GetRows("Comparativa", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Candidato", "DATUM", "IPSOS", "Promedio"}, rows[0])
	assert.Equal(t, []string{"Keiko Fujimori", "12", "11", "11.5"}, rows[1])
	assert.Equal(t, []string{"César Acuña", "—", "5", "5"}, rows[2])

	cellType, err := f.GetCellType("Comparativa", "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
}

func TestWriteRankingXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRankingXLSX(&buf, "DATUM", rankingFixture))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Ranking DATUM"}, f.GetSheetList())

	value, err := f.GetCellValue("Ranking DATUM", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Rafael López Aliaga", value)

	formatted, err := f.GetCellValue("Ranking DATUM", "D2")
	require.NoError(t, err)
	assert.Equal(t, "12.0", formatted)
}

func TestWrite(t *testing.T) {
	table := RankingTable("IEP", rankingFixture)

	var csvBuf, xlsxBuf bytes.Buffer
	require.NoError(t, Write(&csvBuf, FormatCSV, table))
	require.NoError(t, Write(&xlsxBuf, FormatXLSX, table))
	assert.True(t, bytes.HasPrefix(csvBuf.Bytes(), utf8BOM))
	assert.True(t, bytes.HasPrefix(xlsxBuf.Bytes(), []byte("PK")))

	assert.Error(t, Write(&csvBuf, Format("pdf"), table))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "csv", want: FormatCSV},
		{input: "CSV", want: FormatCSV},
		{input: ".xlsx", want: FormatXLSX},
		{input: "xls", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Ranking DATUM", sheetName("Ranking DATUM"))
	assert.Equal(t, "Ranking ab", sheetName("Ranking a/b"))
	assert.Equal(t, "Sheet1", sheetName("[]"))
	assert.Len(t, []rune(sheetName("Ranking Encuestadora Nacional de Opinión Pública")), 31)
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, Absent, formatCell(nil))
	assert.Equal(t, "3", formatCell(3))
	assert.Equal(t, "0.1", formatCell(0.05))
	assert.Equal(t, "text", formatCell("text"))
}
