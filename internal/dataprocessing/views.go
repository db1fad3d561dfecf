package dataprocessing

import (
	"sort"
	"strings"

	"pollscope/pkg/contracts/domain"
)

// DefaultSelectionSize is how many candidates are preselected for the
// evolution and comparison views.
const DefaultSelectionSize = 5

// Ranking orders the candidates of one source by their latest value.
// Candidates without any value are left out. Ties keep the order in which
// candidates first appeared in the source.
func Ranking(ds *domain.PollDataset, source string) []domain.RankingEntry {
	series, ok := ds.Source(source)
	if !ok {
		return []domain.RankingEntry{}
	}

	entries := make([]domain.RankingEntry, 0, len(series.Candidates))
	for _, candidate := range series.Candidates {
		last, prev, n := lastTwo(series.Series(candidate))
		if n == 0 {
			continue
		}
		trend := 0.0
		if n > 1 {
			trend = last - prev
		}
		entries = append(entries, domain.RankingEntry{
			Candidate: candidate,
			Party:     Party(candidate),
			Color:     CandidateColor(candidate),
			LastValue: last,
			Trend:     trend,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LastValue > entries[j].LastValue
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Evolution returns one point per period of the source, in period order.
// Each point only carries the requested candidates that have a value for
// that period.
func Evolution(ds *domain.PollDataset, source string, candidates []string) []domain.EvolutionPoint {
	series, ok := ds.Source(source)
	if !ok {
		return []domain.EvolutionPoint{}
	}

	points := make([]domain.EvolutionPoint, len(series.Periods))
	for idx, period := range series.Periods {
		point := domain.EvolutionPoint{
			Period: period,
			Values: make(map[string]float64),
		}
		for _, candidate := range candidates {
			values := series.Series(candidate)
			if idx < len(values) && values[idx] != nil {
				point.Values[candidate] = *values[idx]
			}
		}
		points[idx] = point
	}
	return points
}

// Comparison returns the latest value of every requested candidate for
// every source, ordered by the mean of the values that are present.
// No candidate is dropped; one with no data sorts as if its mean were 0.
func Comparison(ds *domain.PollDataset, candidates []string) []domain.ComparisonRow {
	sources := ds.Sources()

	rows := make([]domain.ComparisonRow, 0, len(candidates))
	for _, candidate := range candidates {
		row := domain.ComparisonRow{
			Candidate: candidate,
			Color:     CandidateColor(candidate),
			PerSource: make(map[string]*float64, len(sources)),
		}

		sum := 0.0
		for _, name := range sources {
			series, _ := ds.Source(name)
			if !series.HasCandidate(candidate) {
				row.PerSource[name] = nil
				continue
			}
			last, _, n := lastTwo(series.Series(candidate))
			if n == 0 {
				row.PerSource[name] = nil
				continue
			}
			v := last
			row.PerSource[name] = &v
			sum += last
			row.Present++
		}
		if row.Present > 0 {
			row.Mean = sum / float64(row.Present)
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Mean > rows[j].Mean
	})
	return rows
}

// LastPeriod returns the most recent period label of a source
func LastPeriod(ds *domain.PollDataset, source string) (string, bool) {
	series, ok := ds.Source(source)
	if !ok || len(series.Periods) == 0 {
		return "", false
	}
	return series.Periods[len(series.Periods)-1], true
}

// PeriodRange returns the first and last period labels of a source
func PeriodRange(ds *domain.PollDataset, source string) (first, last string, ok bool) {
	series, found := ds.Source(source)
	if !found || len(series.Periods) == 0 {
		return "", "", false
	}
	return series.Periods[0], series.Periods[len(series.Periods)-1], true
}

// AllCandidates lists every candidate across sources in first-seen order
func AllCandidates(ds *domain.PollDataset) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, name := range ds.Sources() {
		series, _ := ds.Source(name)
		for _, c := range series.Candidates {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// DefaultSelection returns the first n candidates of AllCandidates
func DefaultSelection(ds *domain.PollDataset, n int) []string {
	all := AllCandidates(ds)
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// SourceSummaries describes every source in dataset order
func SourceSummaries(ds *domain.PollDataset) []domain.SourceSummary {
	out := make([]domain.SourceSummary, 0, ds.Len())
	for _, name := range ds.Sources() {
		series, _ := ds.Source(name)
		last, _ := LastPeriod(ds, name)
		out = append(out, domain.SourceSummary{
			Name:           name,
			Color:          series.Color,
			PeriodCount:    len(series.Periods),
			CandidateCount: len(series.Candidates),
			LastPeriod:     last,
		})
	}
	return out
}

// ShortName shortens a full name to its first and last words,
// "Rafael López Aliaga" becoming "Rafael Aliaga".
func ShortName(candidate string) string {
	words := strings.Fields(candidate)
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	default:
		return words[0] + " " + words[len(words)-1]
	}
}

// lastTwo returns the last and second-to-last present values and how many
// values are present, capped at 2.
func lastTwo(values []*float64) (last, prev float64, n int) {
	for i := len(values) - 1; i >= 0 && n < 2; i-- {
		if values[i] == nil {
			continue
		}
		if n == 0 {
			last = *values[i]
		} else {
			prev = *values[i]
		}
		n++
	}
	return last, prev, n
}
