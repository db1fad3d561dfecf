package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pollscope/pkg/contracts/domain"
)

func nrow(source, period, candidate string, value float64) domain.NormalizedRow {
	return domain.NormalizedRow{Source: source, Period: period, Candidate: candidate, Value: value}
}

// values flattens a value array into floats with nil as a marker
func values(t *testing.T, arr []*float64) []interface{} {
	t.Helper()
	out := make([]interface{}, len(arr))
	for i, v := range arr {
		if v == nil {
			out[i] = nil
			continue
		}
		out[i] = *v
	}
	return out
}

func TestBuildDataset_ConcreteScenario(t *testing.T) {
	ds := BuildDataset([]domain.NormalizedRow{
		nrow("DATUM", "M1", "A", 10),
		nrow("DATUM", "M2", "A", 12),
		nrow("DATUM", "M1", "B", 8),
	})

	require.Equal(t, []string{"DATUM"}, ds.Sources())
	series, ok := ds.Source("DATUM")
	require.True(t, ok)

	assert.Equal(t, "DATUM", series.Name)
	assert.Equal(t, "#3b82f6", series.Color)
	assert.Equal(t, []string{"M1", "M2"}, series.Periods)
	assert.Equal(t, []string{"A", "B"}, series.Candidates)
	assert.Equal(t, []interface{}{10.0, 12.0}, values(t, series.Values["A"]))
	assert.Equal(t, []interface{}{8.0}, values(t, series.Values["B"]), "index 1 stays absent")
}

func TestIndexer_SourcesAndPeriodsFirstSeenOrder(t *testing.T) {
	ds := BuildDataset([]domain.NormalizedRow{
		nrow("IPSOS", "Mar", "A", 1),
		nrow("DATUM", "Feb", "A", 2),
		nrow("IPSOS", "Ene", "A", 3),
		nrow("DATUM", "Mar", "A", 4),
		nrow("IPSOS", "Mar", "B", 5),
	})

	assert.Equal(t, []string{"IPSOS", "DATUM"}, ds.Sources())

	ipsos, _ := ds.Source("IPSOS")
	datum, _ := ds.Source("DATUM")
	assert.Equal(t, []string{"Mar", "Ene"}, ipsos.Periods, "no chronological sorting")
	assert.Equal(t, []string{"Feb", "Mar"}, datum.Periods)

	// "Mar" is index 0 for IPSOS and index 1 for DATUM
	assert.Equal(t, []interface{}{1.0, 3.0}, values(t, ipsos.Values["A"]))
	assert.Equal(t, []interface{}{2.0, 4.0}, values(t, datum.Values["A"]))
}

func TestIndexer_LastWriteWins(t *testing.T) {
	ds := BuildDataset([]domain.NormalizedRow{
		nrow("CPI", "M1", "A", 10),
		nrow("CPI", "M1", "A", 11),
	})

	cpi, _ := ds.Source("CPI")
	assert.Equal(t, []string{"M1"}, cpi.Periods)
	assert.Equal(t, []string{"A"}, cpi.Candidates)
	assert.Equal(t, []interface{}{11.0}, values(t, cpi.Values["A"]))
}

func TestIndexer_GapsAreAbsentNotZero(t *testing.T) {
	ds := BuildDataset([]domain.NormalizedRow{
		nrow("IEP", "M1", "A", 1),
		nrow("IEP", "M2", "A", 2),
		nrow("IEP", "M3", "B", 0),
	})

	iep, _ := ds.Source("IEP")
	assert.Equal(t, []interface{}{nil, nil, 0.0}, values(t, iep.Values["B"]))
	assert.Equal(t, []interface{}{1.0, 2.0}, values(t, iep.Values["A"]))
}

func TestIndexer_Invariants(t *testing.T) {
	rows := []domain.NormalizedRow{
		nrow("DATUM", "M1", "A", 10),
		nrow("CPI", "M2", "B", 3),
		nrow("DATUM", "M2", "C", 1),
		nrow("DATUM", "M1", "C", 2),
		nrow("CPI", "M2", "B", 4),
		nrow("CPI", "M1", "A", 6),
		nrow("DATUM", "M3", "A", 9),
	}

	ds := BuildDataset(rows)

	for _, name := range ds.Sources() {
		series, _ := ds.Source(name)

		seen := make(map[string]bool)
		for _, p := range series.Periods {
			assert.False(t, seen[p], "duplicate period %q in %s", p, name)
			seen[p] = true
		}

		assert.Len(t, series.Candidates, len(series.Values))
		for c, arr := range series.Values {
			assert.LessOrEqual(t, len(arr), len(series.Periods), "candidate %s in %s", c, name)
		}
	}
}

func TestIndexer_EmptyInput(t *testing.T) {
	ds := BuildDataset(nil)

	require.NotNil(t, ds)
	assert.True(t, ds.IsEmpty())
	assert.Empty(t, ds.Sources())
}

func TestIndexer_DatasetStartsNewPass(t *testing.T) {
	ix := NewIndexer()
	ix.Add(nrow("DATUM", "M1", "A", 10))
	first := ix.Dataset()

	ix.Add(nrow("DATUM", "M2", "A", 12))
	second := ix.Dataset()

	datum, _ := first.Source("DATUM")
	assert.Equal(t, []string{"M1"}, datum.Periods, "finished dataset is not touched by later passes")

	datum2, _ := second.Source("DATUM")
	assert.Equal(t, []string{"M2"}, datum2.Periods)
	assert.Equal(t, []interface{}{12.0}, values(t, datum2.Values["A"]))
}

func TestIngest_Idempotent(t *testing.T) {
	rows := []domain.RawRow{
		raw("DATUM", "M1", "A", "10"),
		raw("DATUM", "M2", "A", "12"),
		raw("DATUM", "M1", "B", "8"),
		raw("DATUM", "M3", "A", "abc"),
		raw("IPSOS", "M1", "A", "9.5"),
	}

	once, acceptedOnce := Ingest(rows)
	again, acceptedAgain := Ingest(rows)

	assert.Equal(t, 4, acceptedOnce)
	assert.Equal(t, acceptedOnce, acceptedAgain)
	assert.Equal(t, once, again)
}

func TestIngest_MalformedRowLeavesDatasetUnchanged(t *testing.T) {
	base := []domain.RawRow{
		raw("DATUM", "M1", "A", "10"),
		raw("DATUM", "M2", "A", "12"),
		raw("DATUM", "M1", "B", "8"),
	}
	withBad := append(append([]domain.RawRow{}, base...), raw("DATUM", "M3", "A", "abc"))

	want, _ := Ingest(base)
	got, _ := Ingest(withBad)

	assert.Equal(t, want, got)
	datum, _ := got.Source("DATUM")
	assert.NotContains(t, datum.Periods, "M3")
}
