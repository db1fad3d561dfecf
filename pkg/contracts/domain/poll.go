package domain

import (
	"encoding/json"
	"time"
)

// Column names of the published poll spreadsheet
const (
	ColumnSource    = "Encuestadora"
	ColumnPeriod    = "Periodo"
	ColumnCandidate = "Candidato"
	ColumnValue     = "Valor"
)

// RawRow is one untyped table row keyed by header name
type RawRow map[string]string

// NormalizedRow is a validated poll observation
type NormalizedRow struct {
	Source    string  `json:"source"`
	Period    string  `json:"period"`
	Candidate string  `json:"candidate"`
	Value     float64 `json:"value"`
}

// SourceSeries holds every observation of one pollster.
// Values[c][i] belongs to Periods[i]; a nil entry means no result for
// that candidate in that period, which is not the same as zero.
type SourceSeries struct {
	Name       string                `json:"name"`
	Color      string                `json:"color"`
	Periods    []string              `json:"periods"`
	Candidates []string              `json:"candidates"`
	Values     map[string][]*float64 `json:"values"`
}

// Series returns the value array of a candidate, or nil
func (s *SourceSeries) Series(candidate string) []*float64 {
	if s == nil {
		return nil
	}
	return s.Values[candidate]
}

// HasCandidate reports whether the candidate appears in this source
func (s *SourceSeries) HasCandidate(candidate string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Values[candidate]
	return ok
}

// PollDataset maps source names to their series, preserving the order in
// which sources were first encountered. A dataset is read-only once built.
type PollDataset struct {
	order  []string
	series map[string]*SourceSeries
}

// NewPollDataset assembles a dataset from series in the given order.
// Later duplicates of a name are ignored.
func NewPollDataset(series ...*SourceSeries) *PollDataset {
	ds := &PollDataset{series: make(map[string]*SourceSeries, len(series))}
	for _, s := range series {
		if s == nil {
			continue
		}
		if _, exists := ds.series[s.Name]; exists {
			continue
		}
		ds.order = append(ds.order, s.Name)
		ds.series[s.Name] = s
	}
	return ds
}

// Sources returns source names in first-seen order
func (d *PollDataset) Sources() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Source looks up a source by name
func (d *PollDataset) Source(name string) (*SourceSeries, bool) {
	if d == nil {
		return nil, false
	}
	s, ok := d.series[name]
	return s, ok
}

// Len returns the number of sources
func (d *PollDataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}

// IsEmpty reports whether the dataset has no sources
func (d *PollDataset) IsEmpty() bool {
	return d.Len() == 0
}

// MarshalJSON encodes the dataset as an ordered list of series
func (d *PollDataset) MarshalJSON() ([]byte, error) {
	out := struct {
		Sources []*SourceSeries `json:"sources"`
	}{Sources: make([]*SourceSeries, 0, d.Len())}
	for _, name := range d.Sources() {
		out.Sources = append(out.Sources, d.series[name])
	}
	return json.Marshal(out)
}

// RankingEntry is one line of a pollster ranking
type RankingEntry struct {
	Rank      int     `json:"rank"`
	Candidate string  `json:"candidate"`
	Party     string  `json:"party,omitempty"`
	Color     string  `json:"color"`
	LastValue float64 `json:"last_value"`
	Trend     float64 `json:"trend"`
}

// EvolutionPoint is one x-axis category of the evolution chart.
// Values only holds candidates with data for the period.
type EvolutionPoint struct {
	Period string             `json:"period"`
	Values map[string]float64 `json:"values"`
}

// ComparisonRow holds the latest value of a candidate for every source.
// A nil entry means the source has no data for the candidate.
type ComparisonRow struct {
	Candidate string              `json:"candidate"`
	Color     string              `json:"color"`
	PerSource map[string]*float64 `json:"per_source"`
	Mean      float64             `json:"mean"`
	Present   int                 `json:"present"`
}

// SourceSummary describes one source for selectors and legends
type SourceSummary struct {
	Name           string `json:"name"`
	Color          string `json:"color"`
	PeriodCount    int    `json:"period_count"`
	CandidateCount int    `json:"candidate_count"`
	LastPeriod     string `json:"last_period,omitempty"`
}

// Snapshot is the unit published after a successful fetch
type Snapshot struct {
	ID           string       `json:"id"`
	Dataset      *PollDataset `json:"-"`
	LastUpdated  time.Time    `json:"last_updated"`
	RowsAccepted int          `json:"rows_accepted"`
	Origin       string       `json:"origin"`
}
