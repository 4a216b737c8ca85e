// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package app

import (
	"bytes"
	"math"
	"net/http"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// chart handles /perf/compare/chart.png: a histogram of the percent
// changes currently displayed. Non-finite changes cannot be plotted
// and are left out.
func (a *App) chart(w http.ResponseWriter, r *http.Request) {
	state := a.loadState(w, r)
	if state == nil {
		return
	}

	var values plotter.Values
	for _, tc := range state.Derived().Ranked {
		if !math.IsNaN(tc.Percent) && !math.IsInf(tc.Percent, 0) {
			values = append(values, tc.Percent)
		}
	}
	if len(values) == 0 {
		http.Error(w, "no finite changes to plot", 404)
		return
	}

	png, err := histogramPNG(values)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func histogramPNG(values plotter.Values) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Distribution of changes"
	p.X.Label.Text = "% change"
	p.Y.Label.Text = "test cases"

	bins := 16
	if len(values) < bins {
		bins = len(values)
	}
	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return nil, err
	}
	p.Add(h)

	img := vgimg.New(vg.Points(600), vg.Points(240))
	p.Draw(draw.New(img))

	var buf bytes.Buffer
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
