// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

// Package app implements the performance site front end: the
// comparison page, its JSON form, and the change-distribution chart.
// It drives the compare engine with documents fetched from a provider
// (normally a storage server).
package app

import (
	"context"
	"net/http"

	"github.com/nick29581/rustc-perf/compare"
)

// A Provider supplies comparison documents. *storage.Client
// implements it; tests substitute their own.
type Provider interface {
	Compare(ctx context.Context, start, end, stat string) (*compare.Document, error)
}

// App manages the site server logic. Construct an App instance using
// a literal with a Provider and call RegisterOnMux to connect it with
// an HTTP server.
type App struct {
	Provider Provider
}

// RegisterOnMux registers the app's URLs on mux.
func (a *App) RegisterOnMux(mux *http.ServeMux) {
	mux.HandleFunc("/perf/compare", a.compare)
	mux.HandleFunc("/perf/compare.json", a.compareJSON)
	mux.HandleFunc("/perf/compare/chart.png", a.chart)
}
