package dataprocessing

import (
	"pollscope/pkg/contracts/domain"
)

// Indexer folds normalized rows into per-source series.
//
// The indexer owns its accumulator for the duration of one pass. Dataset
// hands the finished structure over and starts a new, empty pass, so the
// returned dataset is never written to again. An Indexer is not safe for
// concurrent use.
type Indexer struct {
	order   []string
	sources map[string]*seriesBuilder
}

type seriesBuilder struct {
	series  *domain.SourceSeries
	periods map[string]int
}

// NewIndexer creates an empty indexer
func NewIndexer() *Indexer {
	return &Indexer{sources: make(map[string]*seriesBuilder)}
}

// Add folds one row into the accumulator. A repeated
// (source, candidate, period) triple overwrites the earlier value.
func (ix *Indexer) Add(row domain.NormalizedRow) {
	b := ix.builder(row.Source)

	idx, seen := b.periods[row.Period]
	if !seen {
		idx = len(b.series.Periods)
		b.periods[row.Period] = idx
		b.series.Periods = append(b.series.Periods, row.Period)
	}

	values, known := b.series.Values[row.Candidate]
	if !known {
		b.series.Candidates = append(b.series.Candidates, row.Candidate)
	}
	for len(values) <= idx {
		values = append(values, nil)
	}

	v := row.Value
	values[idx] = &v
	b.series.Values[row.Candidate] = values
}

// AddAll folds rows in order
func (ix *Indexer) AddAll(rows []domain.NormalizedRow) {
	for _, row := range rows {
		ix.Add(row)
	}
}

// Dataset finishes the current pass and returns its result
func (ix *Indexer) Dataset() *domain.PollDataset {
	series := make([]*domain.SourceSeries, 0, len(ix.order))
	for _, name := range ix.order {
		series = append(series, ix.sources[name].series)
	}

	ix.order = nil
	ix.sources = make(map[string]*seriesBuilder)

	return domain.NewPollDataset(series...)
}

func (ix *Indexer) builder(source string) *seriesBuilder {
	if b, ok := ix.sources[source]; ok {
		return b
	}
	b := &seriesBuilder{
		series: &domain.SourceSeries{
			Name:       source,
			Color:      SourceColor(source),
			Periods:    []string{},
			Candidates: []string{},
			Values:     make(map[string][]*float64),
		},
		periods: make(map[string]int),
	}
	ix.order = append(ix.order, source)
	ix.sources[source] = b
	return b
}

// BuildDataset runs a complete fold over rows
func BuildDataset(rows []domain.NormalizedRow) *domain.PollDataset {
	ix := NewIndexer()
	ix.AddAll(rows)
	return ix.Dataset()
}

// Ingest normalizes raw rows and folds the accepted ones into a dataset.
// It also returns how many rows were accepted.
func Ingest(raw []domain.RawRow) (*domain.PollDataset, int) {
	rows := NormalizeAll(raw)
	return BuildDataset(rows), len(rows)
}
