// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package comparetable

import (
	"bytes"
	"html/template"
)

var htmlFuncs = template.FuncMap{
	"percent": Percent,
}

var htmlTemplate = template.Must(template.New("").Funcs(htmlFuncs).Parse(`
<table class='comparetable'>
<tr><th>test case<th>change<th>magnitude<th>category
{{range .Rows -}}
<tr class='{{if .Significant}}significant{{else}}insignificant{{end}}'><td>{{.Name}}{{if .Dodgy}} ?{{end}}<td>{{.Percent}}<td>{{.Magnitude}}<td>{{.Category}}
{{end -}}
</table>
<table class='comparetable summary'>
<tr><th><th>count<th>avg
<tr><td>regressions (all)<td>{{.All.Regressions}}<td>{{percent .All.RegressionsAvg}}
<tr><td>improvements (all)<td>{{.All.Improvements}}<td>{{percent .All.ImprovementsAvg}}
<tr><td>unchanged (all)<td>{{.All.Unchanged}}<td>
<tr><td>regressions (filtered)<td>{{.Filtered.Regressions}}<td>{{percent .Filtered.RegressionsAvg}}
<tr><td>improvements (filtered)<td>{{.Filtered.Improvements}}<td>{{percent .Filtered.ImprovementsAvg}}
<tr><td>unchanged (filtered)<td>{{.Filtered.Unchanged}}<td>
</table>
`))

// FormatHTML appends an HTML formatting of the table to buf.
func FormatHTML(buf *bytes.Buffer, t *Table) {
	err := htmlTemplate.Execute(buf, t)
	if err != nil {
		// Only possible errors here are template not matching data structure.
		// Don't make caller check - it's our fault.
		panic(err)
	}
}
