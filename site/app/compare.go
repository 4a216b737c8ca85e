// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package app

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"github.com/google/safehtml/template"

	"github.com/nick29581/rustc-perf/compare"
)

// loadState runs one comparison query end to end: parse navigation
// and filter parameters, fetch the document, recompute.
func (a *App) loadState(w http.ResponseWriter, r *http.Request) *CompareState {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 500)
		return nil
	}
	start := r.Form.Get("start")
	end := r.Form.Get("end")
	if start == "" || end == "" {
		http.Error(w, "missing start or end parameter", 400)
		return nil
	}
	stat := r.Form.Get("stat")
	if stat == "" {
		stat = compare.DefaultMetric
	}

	state := NewCompareState(a.Provider)
	state.SetCriteria(criteriaFromForm(r.Form))
	if err := state.Load(r.Context(), start, end, stat); err != nil {
		http.Error(w, err.Error(), 500)
		return nil
	}
	return state
}

// criteriaFromForm builds filter criteria from the query string.
// Scenario and category toggles arrive as comma-separated lists;
// an absent list leaves every class enabled.
func criteriaFromForm(form url.Values) *compare.Criteria {
	cr := compare.NewCriteria()
	cr.Name = form.Get("name")
	cr.SignificantOnly = form.Get("significant") == "1"
	cr.ExcludeVerySmall = form.Get("excludeVerySmall") == "1"

	if v := form.Get("scenarios"); v != "" {
		enabled := map[compare.ScenarioClass]bool{}
		for _, s := range strings.Split(v, ",") {
			if class, ok := compare.ClassifyScenario(strings.TrimSpace(s)); ok {
				enabled[class] = true
			}
		}
		cr.Scenarios = enabled
	}
	if v := form.Get("categories"); v != "" {
		enabled := map[compare.Category]bool{}
		for _, c := range strings.Split(v, ",") {
			switch cat := compare.Category(strings.TrimSpace(c)); cat {
			case compare.CategoryPrimary, compare.CategorySecondary:
				enabled[cat] = true
			}
		}
		cr.Categories = enabled
	}
	return cr
}

type rowData struct {
	Name        string
	Percent     string
	Magnitude   string
	Category    compare.Category
	Significant bool
	Dodgy       bool
}

type summaryData struct {
	Regressions     int
	RegressionsAvg  string
	Improvements    int
	ImprovementsAvg string
	Unchanged       int
	Average         string
}

// distData summarizes the distribution of the displayed percent
// changes. Non-finite percents are left out; they have no place on a
// number line.
type distData struct {
	N              int
	Q1, Median, Q3 string
}

type compareData struct {
	Start, End, Stat string
	A, B             compare.ArtifactDescription
	DiffLink         string
	PrevLink         string
	NextLink         string
	ChartLink        string
	IsContiguous     bool
	Rows             []rowData
	All, Filtered    summaryData
	Dist             *distData
}

// compare handles /perf/compare.
func (a *App) compare(w http.ResponseWriter, r *http.Request) {
	state := a.loadState(w, r)
	if state == nil {
		return
	}
	data := buildCompareData(state, r.URL.Query())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := compareTemplate.Execute(w, data); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
}

func buildCompareData(state *CompareState, query url.Values) *compareData {
	doc := state.Document()
	derived := state.Derived()

	data := &compareData{
		Start:        query.Get("start"),
		End:          query.Get("end"),
		Stat:         query.Get("stat"),
		A:            doc.A,
		B:            doc.B,
		IsContiguous: doc.IsContiguous,
		DiffLink:     fmt.Sprintf("https://github.com/rust-lang/rust/compare/%s...%s", doc.A.Commit, doc.B.Commit),
		All:          summaryView(derived.Summary.All),
		Filtered:     summaryView(derived.Summary.Filtered),
	}
	if data.Stat == "" {
		data.Stat = compare.DefaultMetric
	}
	if doc.Prev != "" {
		data.PrevLink = navLink(doc.Prev, doc.A.Commit, data.Stat)
	}
	if doc.Next != "" {
		data.NextLink = navLink(doc.B.Commit, doc.Next, data.Stat)
	}

	chart := url.Values{}
	for k, vs := range query {
		chart[k] = vs
	}
	data.ChartLink = "/perf/compare/chart.png?" + chart.Encode()

	var finite []float64
	for _, tc := range derived.Ranked {
		data.Rows = append(data.Rows, rowData{
			Name:        tc.Key(),
			Percent:     formatPercent(tc.Percent),
			Magnitude:   tc.Magnitude,
			Category:    tc.Category,
			Significant: tc.IsSignificant,
			Dodgy:       tc.IsDodgy,
		})
		if !math.IsNaN(tc.Percent) && !math.IsInf(tc.Percent, 0) {
			finite = append(finite, tc.Percent)
		}
	}
	if len(finite) > 0 {
		sample := stats.Sample{Xs: finite}
		data.Dist = &distData{
			N:      len(finite),
			Q1:     formatPercent(sample.Quantile(0.25)),
			Median: formatPercent(sample.Quantile(0.5)),
			Q3:     formatPercent(sample.Quantile(0.75)),
		}
	}
	return data
}

func navLink(start, end, stat string) string {
	v := url.Values{}
	v.Set("start", start)
	v.Set("end", end)
	v.Set("stat", stat)
	return "/perf/compare?" + v.Encode()
}

func summaryView(s compare.SummaryStats) summaryData {
	return summaryData{
		Regressions:     s.Regressions,
		RegressionsAvg:  formatPercent(s.RegressionsAvg),
		Improvements:    s.Improvements,
		ImprovementsAvg: formatPercent(s.ImprovementsAvg),
		Unchanged:       s.Unchanged,
		Average:         formatPercent(s.Average),
	}
}

func formatPercent(p float64) string {
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

var compareTemplate = template.Must(template.New("compare").ParseFromTrustedTemplate(template.MakeTrustedTemplate(`
<!DOCTYPE html>
<html>
<head><title>Comparing {{.Start}} and {{.End}}</title></head>
<body>
<h1>Comparing {{.Start}} and {{.End}} ({{.Stat}})</h1>
<p>
{{if .PrevLink}}<a href="{{.PrevLink}}">&laquo; previous</a> {{end}}
<a href="{{.DiffLink}}">source diff</a>
{{if .NextLink}} <a href="{{.NextLink}}">next &raquo;</a>{{end}}
{{if not .IsContiguous}} <em>(commits are not adjacent)</em>{{end}}
</p>

<h2>Summary</h2>
<table border="1">
<tr><th></th><th>all</th><th>filtered</th></tr>
<tr><td>regressions</td><td>{{.All.Regressions}} (avg {{.All.RegressionsAvg}})</td><td>{{.Filtered.Regressions}} (avg {{.Filtered.RegressionsAvg}})</td></tr>
<tr><td>improvements</td><td>{{.All.Improvements}} (avg {{.All.ImprovementsAvg}})</td><td>{{.Filtered.Improvements}} (avg {{.Filtered.ImprovementsAvg}})</td></tr>
<tr><td>unchanged</td><td>{{.All.Unchanged}}</td><td>{{.Filtered.Unchanged}}</td></tr>
<tr><td>average</td><td>{{.All.Average}}</td><td>{{.Filtered.Average}}</td></tr>
</table>

{{with .Dist}}
<p>Displayed changes: median {{.Median}}, quartiles {{.Q1}} .. {{.Q3}} over {{.N}} finite changes.</p>
{{end}}
<p><img src="{{.ChartLink}}" alt="distribution of changes"></p>

<h2>Test cases</h2>
<table border="1">
<tr><th>test case</th><th>change</th><th>magnitude</th><th>category</th></tr>
{{range .Rows}}
<tr><td>{{.Name}}{{if .Dodgy}} ?{{end}}</td><td>{{if .Significant}}<b>{{.Percent}}</b>{{else}}{{.Percent}}{{end}}</td><td>{{.Magnitude}}</td><td>{{.Category}}</td></tr>
{{end}}
</table>

<h2>Bootstrap</h2>
<table border="1">
<tr><th>phase</th><th>{{.A.Commit}}</th><th>{{.B.Commit}}</th></tr>
{{$b := .B.Bootstrap}}
{{range $phase, $nanos := .A.Bootstrap}}
<tr><td>{{$phase}}</td><td>{{$nanos}}</td><td>{{index $b $phase}}</td></tr>
{{end}}
<tr><td><b>total</b></td><td>{{.A.BootstrapTotal}}</td><td>{{.B.BootstrapTotal}}</td></tr>
</table>
</body>
</html>
`)))
