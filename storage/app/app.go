// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

// Package app implements the measurement storage server. Combine an
// App with a database to get an HTTP server that accepts collector
// run reports and answers comparison queries.
package app

import (
	"net/http"

	"github.com/nick29581/rustc-perf/storage/db"
)

// App manages the storage server logic. Construct an App instance
// using a literal with a DB object and call RegisterOnMux to connect
// it with an HTTP server.
type App struct {
	DB *db.DB
}

// RegisterOnMux registers the app's URLs on mux.
func (a *App) RegisterOnMux(mux *http.ServeMux) {
	mux.HandleFunc("/upload", a.upload)
	mux.HandleFunc("/perf/get", a.get)
}
