// Package api contains the query contracts of the poll dashboard HTTP API.
package api

import "strings"

// MaxCandidates bounds a candidate selection
const MaxCandidates = 20

// EvolutionQuery selects the candidates plotted for one pollster. An empty
// selection means the default selection.
type EvolutionQuery struct {
	Source     string   `json:"source" validate:"required,max=100,printable"`
	Candidates []string `json:"candidates" validate:"max=20,dive,required,max=100,printable"`
}

// ComparisonQuery selects the candidates of the comparison table
type ComparisonQuery struct {
	Candidates []string `json:"candidates" validate:"max=20,dive,required,max=100,printable"`
}

// ExportQuery describes a table download. Source is required for rankings.
type ExportQuery struct {
	View       string   `json:"view" validate:"required,oneof=ranking comparison"`
	Format     string   `json:"format" validate:"required,oneof=csv xlsx"`
	Source     string   `json:"source" validate:"required_if=View ranking,max=100,printable"`
	Candidates []string `json:"candidates" validate:"max=20,dive,required,max=100,printable"`
}

// CandidateList reads the values of a repeatable candidates parameter. A
// single value is a comma separated list; repeated values are taken whole,
// so names containing commas can be selected with
// ?candidates=A&candidates=B. Blank items are dropped.
func CandidateList(values []string) []string {
	if len(values) <= 1 {
		if len(values) == 0 {
			return nil
		}
		return SplitList(values[0])
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SplitList parses a comma separated query value. Blank items are dropped.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
