// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package compare

import (
	"math"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Rank returns cases ordered for display: descending by the magnitude
// of the percent change, with equal magnitudes in collated benchmark
// name order. The input is not modified.
//
// The order is built with two stable sorts rather than one composite
// comparison: names first, then magnitude. Magnitude ties are common
// (many near-zero changes), and the name pass pins their relative
// order so repeated runs produce identical output.
//
// A NaN percent (zero before-value) compares neither above nor below
// anything, so such cases keep their name-sorted position.
func Rank(cases []TestCase) []TestCase {
	out := make([]TestCase, len(cases))
	copy(out, cases)

	coll := collate.New(language.Und)
	sort.SliceStable(out, func(i, j int) bool {
		return coll.CompareString(out[i].Benchmark, out[j].Benchmark) < 0
	})
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Percent) > math.Abs(out[j].Percent)
	})
	return out
}
