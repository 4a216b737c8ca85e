// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package comparetable

import (
	"bytes"
	"fmt"

	"github.com/nick29581/rustc-perf/compare"
)

// FormatText appends a fixed-width formatting of the table to buf.
func FormatText(buf *bytes.Buffer, t *Table) {
	nameWidth := len("test case")
	pctWidth := len("change")
	for _, row := range t.Rows {
		name := row.Name
		if row.Dodgy {
			name += " ?"
		}
		if len(name) > nameWidth {
			nameWidth = len(name)
		}
		if len(row.Percent) > pctWidth {
			pctWidth = len(row.Percent)
		}
	}

	fmt.Fprintf(buf, "%-*s  %*s  %-10s  %s\n", nameWidth, "test case", pctWidth, "change", "magnitude", "category")
	for _, row := range t.Rows {
		name := row.Name
		if row.Dodgy {
			name += " ?"
		}
		marker := " "
		if row.Significant {
			marker = "!"
		}
		fmt.Fprintf(buf, "%-*s  %*s%s %-10s  %s\n", nameWidth, name, pctWidth, row.Percent, marker, row.Magnitude, row.Category)
	}

	buf.WriteByte('\n')
	writeSummary(buf, "all", t.All)
	writeSummary(buf, "filtered", t.Filtered)
}

func writeSummary(buf *bytes.Buffer, label string, s compare.SummaryStats) {
	fmt.Fprintf(buf, "%-9s %d regressions (avg %s), %d improvements (avg %s), %d unchanged; overall avg %s\n",
		label+":", s.Regressions, Percent(s.RegressionsAvg),
		s.Improvements, Percent(s.ImprovementsAvg),
		s.Unchanged, Percent(s.Average))
}
