// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package app

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/nick29581/rustc-perf/compare"
)

// jsonFloat encodes like float64 but maps non-finite values to null.
// JSON has no Inf or NaN; inside the engine those values propagate,
// at the wire they become null.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

type caseJSON struct {
	compare.TestCase
	Percent jsonFloat `json:"percent"`
}

type summaryStatsJSON struct {
	Regressions     int       `json:"regressions"`
	RegressionsAvg  jsonFloat `json:"regressions_avg"`
	Improvements    int       `json:"improvements"`
	ImprovementsAvg jsonFloat `json:"improvements_avg"`
	Unchanged       int       `json:"unchanged"`
	Average         jsonFloat `json:"average"`
}

type compareJSON struct {
	A            compare.ArtifactDescription `json:"a"`
	B            compare.ArtifactDescription `json:"b"`
	Prev         string                      `json:"prev,omitempty"`
	Next         string                      `json:"next,omitempty"`
	IsContiguous bool                        `json:"is_contiguous"`
	Summary      struct {
		All      summaryStatsJSON `json:"all"`
		Filtered summaryStatsJSON `json:"filtered"`
	} `json:"summary"`
	// Cases is the ranked, filtered list.
	Cases []caseJSON `json:"cases"`
}

func statsJSON(s compare.SummaryStats) summaryStatsJSON {
	return summaryStatsJSON{
		Regressions:     s.Regressions,
		RegressionsAvg:  jsonFloat(s.RegressionsAvg),
		Improvements:    s.Improvements,
		ImprovementsAvg: jsonFloat(s.ImprovementsAvg),
		Unchanged:       s.Unchanged,
		Average:         jsonFloat(s.Average),
	}
}

// compareJSON handles /perf/compare.json.
func (a *App) compareJSON(w http.ResponseWriter, r *http.Request) {
	state := a.loadState(w, r)
	if state == nil {
		return
	}
	doc := state.Document()
	derived := state.Derived()

	out := &compareJSON{
		A:            doc.A,
		B:            doc.B,
		Prev:         doc.Prev,
		Next:         doc.Next,
		IsContiguous: doc.IsContiguous,
	}
	out.Summary.All = statsJSON(derived.Summary.All)
	out.Summary.Filtered = statsJSON(derived.Summary.Filtered)
	for _, tc := range derived.Ranked {
		out.Cases = append(out.Cases, caseJSON{TestCase: tc, Percent: jsonFloat(tc.Percent)})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
}
