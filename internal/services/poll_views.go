package services

import (
	"time"

	"pollscope/internal/dataprocessing"
	"pollscope/pkg/contracts/domain"
)

// RankingView is the ranking of one pollster at its latest period
type RankingView struct {
	Source     string                `json:"source"`
	Color      string                `json:"color"`
	LastPeriod string                `json:"last_period,omitempty"`
	Entries    []domain.RankingEntry `json:"entries"`
}

// EvolutionView is the chart data of one pollster for a candidate selection
type EvolutionView struct {
	Source      string                  `json:"source"`
	FirstPeriod string                  `json:"first_period,omitempty"`
	LastPeriod  string                  `json:"last_period,omitempty"`
	Candidates  []CandidateInfo         `json:"candidates"`
	Points      []domain.EvolutionPoint `json:"points"`
}

// ComparisonView is the cross-pollster table for a candidate selection
type ComparisonView struct {
	Sources []domain.SourceSummary `json:"sources"`
	Rows    []domain.ComparisonRow `json:"rows"`
}

// CandidateInfo decorates a candidate name for legends and selectors
type CandidateInfo struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Party     string `json:"party,omitempty"`
	Color     string `json:"color"`
}

// CandidatesView lists every candidate and the initial selection
type CandidatesView struct {
	Candidates []CandidateInfo `json:"candidates"`
	Default    []string        `json:"default"`
}

// SourcesView lists the pollsters of the current snapshot
type SourcesView struct {
	SnapshotID  string                 `json:"snapshot_id"`
	LastUpdated time.Time              `json:"last_updated"`
	Sources     []domain.SourceSummary `json:"sources"`
}

func candidateInfo(names []string) []CandidateInfo {
	out := make([]CandidateInfo, 0, len(names))
	for _, name := range names {
		out = append(out, CandidateInfo{
			Name:      name,
			ShortName: dataprocessing.ShortName(name),
			Party:     dataprocessing.Party(name),
			Color:     dataprocessing.CandidateColor(name),
		})
	}
	return out
}

// selection falls back to the default selection when none is given
func selection(ds *domain.PollDataset, candidates []string) []string {
	if len(candidates) == 0 {
		return dataprocessing.DefaultSelection(ds, dataprocessing.DefaultSelectionSize)
	}
	return candidates
}

// Ranking returns the ranking view of source
func (s *PollService) Ranking(source string) (*RankingView, error) {
	ds, series, err := s.sourceDataset(source)
	if err != nil {
		return nil, err
	}

	last, _ := dataprocessing.LastPeriod(ds, source)
	return &RankingView{
		Source:     source,
		Color:      series.Color,
		LastPeriod: last,
		Entries:    dataprocessing.Ranking(ds, source),
	}, nil
}

// Evolution returns the evolution chart of source for the given
// candidates, or for the default selection when candidates is empty
func (s *PollService) Evolution(source string, candidates []string) (*EvolutionView, error) {
	ds, _, err := s.sourceDataset(source)
	if err != nil {
		return nil, err
	}

	candidates = selection(ds, candidates)
	first, last, _ := dataprocessing.PeriodRange(ds, source)
	return &EvolutionView{
		Source:      source,
		FirstPeriod: first,
		LastPeriod:  last,
		Candidates:  candidateInfo(candidates),
		Points:      dataprocessing.Evolution(ds, source, candidates),
	}, nil
}

// Comparison returns the cross-pollster comparison for the given
// candidates, or for the default selection when candidates is empty
func (s *PollService) Comparison(candidates []string) (*ComparisonView, error) {
	ds, err := s.dataset()
	if err != nil {
		return nil, err
	}

	return &ComparisonView{
		Sources: dataprocessing.SourceSummaries(ds),
		Rows:    dataprocessing.Comparison(ds, selection(ds, candidates)),
	}, nil
}

// Sources returns the pollster summaries of the current snapshot
func (s *PollService) Sources() (*SourcesView, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return &SourcesView{
		SnapshotID:  snap.ID,
		LastUpdated: snap.LastUpdated,
		Sources:     dataprocessing.SourceSummaries(snap.Dataset),
	}, nil
}

// Candidates returns every candidate across pollsters in first-seen order
func (s *PollService) Candidates() (*CandidatesView, error) {
	ds, err := s.dataset()
	if err != nil {
		return nil, err
	}
	return &CandidatesView{
		Candidates: candidateInfo(dataprocessing.AllCandidates(ds)),
		Default:    dataprocessing.DefaultSelection(ds, dataprocessing.DefaultSelectionSize),
	}, nil
}
