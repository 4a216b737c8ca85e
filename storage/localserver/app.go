// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

// Localserver runs an HTTP server for benchmark result storage.
//
// Usage:
//
//	localserver [-addr address] [-driver name] [-dsn dsn]
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/nick29581/rustc-perf/storage/app"
	"github.com/nick29581/rustc-perf/storage/db"
	_ "github.com/nick29581/rustc-perf/storage/db/sqlite3"
)

var (
	addr   = flag.String("addr", ":8080", "serve HTTP on `address`")
	driver = flag.String("driver", "sqlite3", "database/sql driver `name`")
	dsn    = flag.String("dsn", "file:perf.db?cache=shared", "database `dsn`")
)

func main() {
	log.SetPrefix("localserver: ")
	flag.Parse()

	d, err := db.OpenSQL(*driver, *dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer d.Close()

	app := &app.App{DB: d}
	app.RegisterOnMux(http.DefaultServeMux)

	log.Printf("Listening on %s", *addr)

	log.Fatal(http.ListenAndServe(*addr, nil))
}
