// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package compare

// A TestCase is a Comparison annotated with its resolved category and
// computed percent change. TestCases are immutable once produced.
type TestCase struct {
	Comparison
	Category Category `json:"category"`
	Percent  float64  `json:"percent"`
}

// Transform annotates each comparison with its percent change and
// category. The output preserves input order and always has exactly
// one entry per input record; ordering is Rank's job, not Transform's.
func Transform(comparisons []Comparison, categories Categories) []TestCase {
	cases := make([]TestCase, len(comparisons))
	for i, c := range comparisons {
		cases[i] = TestCase{
			Comparison: c,
			Category:   categories.Get(c.Benchmark),
			Percent:    c.Percent(),
		}
	}
	return cases
}
