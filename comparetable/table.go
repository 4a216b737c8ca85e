// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

// Package comparetable formats ranked comparison results as text or
// HTML tables.
package comparetable

import (
	"fmt"
	"math"

	"github.com/nick29581/rustc-perf/compare"
)

// A Table holds the rows to format plus the summaries of the full set
// and of the displayed subset.
type Table struct {
	Rows          []Row
	All, Filtered compare.SummaryStats
}

// A Row is one displayed test case.
type Row struct {
	Name        string
	Percent     string
	Magnitude   string
	Category    compare.Category
	Significant bool
	Dodgy       bool
}

// New builds a table from ranked test cases. The cases are emitted in
// the order given; rank before calling.
func New(ranked []compare.TestCase, summary compare.Summary) *Table {
	t := &Table{All: summary.All, Filtered: summary.Filtered}
	for _, tc := range ranked {
		t.Rows = append(t.Rows, Row{
			Name:        tc.Key(),
			Percent:     Percent(tc.Percent),
			Magnitude:   tc.Magnitude,
			Category:    tc.Category,
			Significant: tc.IsSignificant,
			Dodgy:       tc.IsDodgy,
		})
	}
	return t
}

// Percent formats a percent change. The non-finite values that a zero
// baseline produces have no numeric rendering and get spelled out.
func Percent(p float64) string {
	switch {
	case math.IsNaN(p):
		return "NaN"
	case math.IsInf(p, 1):
		return "+inf%"
	case math.IsInf(p, -1):
		return "-inf%"
	}
	return fmt.Sprintf("%+.2f%%", p)
}
