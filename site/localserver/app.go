// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

// Localserver runs an HTTP server for the comparison front end.
//
// Usage:
//
//	localserver [-addr address] [-storage url]
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/nick29581/rustc-perf/site/app"
	"github.com/nick29581/rustc-perf/storage"
)

var (
	addr       = flag.String("addr", "localhost:8080", "serve HTTP on `address`")
	storageURL = flag.String("storage", "http://localhost:8081", "storage server base `url`")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage of localserver:
	localserver [flags]
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("localserver: ")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 0 {
		flag.Usage()
	}

	app := &app.App{Provider: &storage.Client{BaseURL: *storageURL}}
	app.RegisterOnMux(http.DefaultServeMux)

	log.Printf("Listening on %s", *addr)

	log.Fatal(http.ListenAndServe(*addr, nil))
}
