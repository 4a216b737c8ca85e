// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package compare

// SummaryStats are the aggregate counts and averages for one scope.
// A comparison is a regression when its percent change is positive and
// significant, an improvement when negative and significant, and
// unchanged otherwise. Every comparison in scope lands in exactly one
// bucket and contributes to the overall average.
type SummaryStats struct {
	Regressions     int     `json:"regressions"`
	RegressionsAvg  float64 `json:"regressions_avg"`
	Improvements    int     `json:"improvements"`
	ImprovementsAvg float64 `json:"improvements_avg"`
	Unchanged       int     `json:"unchanged"`
	Average         float64 `json:"average"`
}

// A Summary holds aggregate statistics over the full comparison set
// and over the currently filtered subset.
type Summary struct {
	All      SummaryStats `json:"all"`
	Filtered SummaryStats `json:"filtered"`
}

// Summarize reduces the raw comparisons into both scopes. The filtered
// scope counts only comparisons whose identity key appears in
// filtered (see Criteria.FilteredKeys). Percent changes are recomputed
// from the raw statistics here, independently of any transformed or
// ranked list, so the aggregates cannot drift from pipeline state.
func Summarize(comparisons []Comparison, filtered map[string]bool) Summary {
	return Summary{
		All: accumulate(comparisons, func(*Comparison) bool {
			return true
		}),
		Filtered: accumulate(comparisons, func(c *Comparison) bool {
			return filtered[c.Key()]
		}),
	}
}

func accumulate(comparisons []Comparison, include func(*Comparison) bool) SummaryStats {
	var s SummaryStats
	var total int
	var sum, regSum, impSum float64
	for i := range comparisons {
		c := &comparisons[i]
		if !include(c) {
			continue
		}
		pct := c.Percent()
		switch {
		case pct > 0 && c.IsSignificant:
			s.Regressions++
			regSum += pct
		case pct < 0 && c.IsSignificant:
			s.Improvements++
			impSum += pct
		default:
			// Non-finite percents fall through here: NaN is
			// neither positive nor negative.
			s.Unchanged++
		}
		sum += pct
		total++
	}
	s.RegressionsAvg = avg(regSum, s.Regressions)
	s.ImprovementsAvg = avg(impSum, s.Improvements)
	s.Average = avg(sum, total)
	return s
}

// avg divides, reporting 0 rather than NaN for an empty bucket.
func avg(sum float64, n int) float64 {
	if n < 1 {
		n = 1
	}
	return sum / float64(n)
}
