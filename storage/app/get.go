// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package app

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nick29581/rustc-perf/storage/db"
)

// get handles /perf/get: the comparison document for two revisions
// and one metric. stat defaults to the engine's default metric when
// absent.
func (a *App) get(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	start := r.Form.Get("start")
	end := r.Form.Get("end")
	if start == "" || end == "" {
		http.Error(w, "missing start or end parameter", 400)
		return
	}

	doc, err := a.DB.Comparison(r.Context(), start, end, r.Form.Get("stat"))
	if err != nil {
		code := 500
		if errors.Is(err, db.ErrNoSuchArtifact) {
			code = 404
		}
		http.Error(w, err.Error(), code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
}
