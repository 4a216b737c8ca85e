// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package comparetable

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/nick29581/rustc-perf/compare"
)

func testTable() *Table {
	cases := []compare.TestCase{
		{
			Comparison: compare.Comparison{
				Benchmark: "syn", Profile: "check", Scenario: "full",
				IsSignificant: true, Magnitude: "large",
			},
			Category: compare.CategoryPrimary,
			Percent:  10,
		},
		{
			Comparison: compare.Comparison{
				Benchmark: "noisy", Profile: "opt", Scenario: "incr-full",
				IsDodgy: true, Magnitude: "small",
			},
			Category: compare.CategorySecondary,
			Percent:  -1.5,
		},
		{
			Comparison: compare.Comparison{
				Benchmark: "zerobase", Profile: "check", Scenario: "full",
				IsSignificant: true, Magnitude: "very large",
			},
			Category: compare.CategoryPrimary,
			Percent:  math.Inf(1),
		},
	}
	summary := compare.Summary{
		All: compare.SummaryStats{
			Regressions: 1, RegressionsAvg: 10,
			Improvements: 1, ImprovementsAvg: -1.5,
			Unchanged: 0, Average: 4.25,
		},
	}
	summary.Filtered = summary.All
	return New(cases, summary)
}

func TestPercent(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{10, "+10.00%"},
		{-1.5, "-1.50%"},
		{0, "+0.00%"},
		{math.Inf(1), "+inf%"},
		{math.Inf(-1), "-inf%"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		if got := Percent(tt.p); got != tt.want {
			t.Errorf("Percent(%v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestFormatText(t *testing.T) {
	var buf bytes.Buffer
	FormatText(&buf, testTable())
	out := buf.String()

	for _, want := range []string{
		"syn check full",
		"+10.00%!",
		"noisy opt incr-full ?",
		"-1.50%",
		"+inf%",
		"all:      1 regressions (avg +10.00%), 1 improvements (avg -1.50%), 0 unchanged; overall avg +4.25%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q; got:\n%s", want, out)
		}
	}
}

func TestFormatHTML(t *testing.T) {
	var buf bytes.Buffer
	FormatHTML(&buf, testTable())
	out := buf.String()

	// html/template escapes "+" as &#43;.
	for _, want := range []string{
		"<td>syn check full<td>&#43;10.00%",
		"class='significant'",
		"<td>noisy opt incr-full ?<td>-1.50%",
		"<td>regressions (all)<td>1<td>&#43;10.00%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q; got:\n%s", want, out)
		}
	}
}
