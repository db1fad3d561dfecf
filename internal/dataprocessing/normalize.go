package dataprocessing

import (
	"math"
	"strconv"
	"strings"

	"pollscope/pkg/contracts/domain"
)

// Normalize coerces one raw row into a typed observation.
// Rows with a blank source, period or candidate, or with a value that is
// not a finite number, are rejected by returning ok=false. Rejection is not
// an error and callers are expected to skip the row silently.
func Normalize(raw domain.RawRow) (row domain.NormalizedRow, ok bool) {
	source := strings.TrimSpace(raw[domain.ColumnSource])
	period := strings.TrimSpace(raw[domain.ColumnPeriod])
	candidate := strings.TrimSpace(raw[domain.ColumnCandidate])
	if source == "" || period == "" || candidate == "" {
		return domain.NormalizedRow{}, false
	}

	value, ok := ParseNumber(raw[domain.ColumnValue])
	if !ok {
		return domain.NormalizedRow{}, false
	}

	return domain.NormalizedRow{
		Source:    source,
		Period:    period,
		Candidate: candidate,
		Value:     value,
	}, true
}

// NormalizeAll normalizes a row stream, dropping rejected rows and keeping
// arrival order.
func NormalizeAll(rows []domain.RawRow) []domain.NormalizedRow {
	out := make([]domain.NormalizedRow, 0, len(rows))
	for _, raw := range rows {
		if row, ok := Normalize(raw); ok {
			out = append(out, row)
		}
	}
	return out
}

// ParseNumber parses the longest leading decimal literal of s, so "12.5%"
// yields 12.5 and "8 pts" yields 8. The decimal separator is always '.'.
// Text without a leading number and non-finite results are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	prefix := decimalPrefix(s)
	if prefix == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		// Only range errors get here; ParseFloat returns ±Inf for them.
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// decimalPrefix returns the longest prefix of s matching
// [+-]? (digits [. digits?] | . digits) ([eE] [+-]? digits)?
func decimalPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	intDigits := countDigits(s[i:])
	i += intDigits

	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		fracDigits = countDigits(s[i+1:])
		if intDigits > 0 || fracDigits > 0 {
			i += 1 + fracDigits
		}
	}

	if intDigits == 0 && fracDigits == 0 {
		return ""
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if n := countDigits(s[j:]); n > 0 {
			i = j + n
		}
	}

	return s[:i]
}

func countDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}
