// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

// Perfsave uploads benchmark result reports to a storage server.
//
// Usage:
//
//	perfsave [-v] [-server url] [-token file] file...
//
// Each input file should contain one JSON report produced by the
// benchmark collector: one artifact's measurements plus its bootstrap
// timings.
//
// Perfsave uploads the input files to the specified server and prints
// a URL where the two most recent artifacts can be compared.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

var (
	server  = flag.String("server", "https://perf.rust-lang.org", "upload reports to server at `url`")
	verbose = flag.Bool("v", false, "print verbose log messages")
	token   = flag.String("token", "", "read a bearer token from `file` and authenticate with it")
)

type uploadStatus struct {
	// Commits lists the artifact revisions stored by the upload.
	Commits []string `json:"commits"`
	// ViewURL is a server-supplied URL comparing the last two
	// uploaded revisions.
	ViewURL string `json:"viewurl"`
}

// writeOneFile reads name and writes it to mpw.
func writeOneFile(mpw *multipart.Writer, name string) error {
	w, err := mpw.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return err
	}
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return err
	}
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage of perfsave:
	perfsave [flags] file...
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func httpClient() *http.Client {
	if *token == "" {
		return http.DefaultClient
	}
	data, err := os.ReadFile(*token)
	if err != nil {
		log.Fatal(err)
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: string(bytes.TrimSpace(data)),
	})
	return oauth2.NewClient(context.Background(), src)
}

func main() {
	log.SetPrefix("perfsave: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		log.Fatal("no files to upload")
	}

	hc := httpClient()

	pr, pw := io.Pipe()
	mpw := multipart.NewWriter(pw)

	go func() {
		defer pw.Close()
		defer mpw.Close()

		for _, name := range files {
			if err := writeOneFile(mpw, name); err != nil {
				log.Print(err)
				// An aborted body makes the server reject the
				// upload, which surfaces as an error below.
				pw.CloseWithError(err)
				return
			}
		}
	}()

	start := time.Now()

	resp, err := hc.Post(*server+"/upload", mpw.FormDataContentType(), pr)
	if err != nil {
		log.Fatalf("upload failed: %v\n", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		log.Printf("upload failed: %v\n", resp.Status)
		io.Copy(os.Stderr, resp.Body)
		os.Exit(1)
	}

	status := &uploadStatus{}
	if err := json.NewDecoder(resp.Body).Decode(status); err != nil {
		log.Fatalf("cannot parse upload response: %v\n", err)
	}

	if *verbose {
		s := ""
		if len(files) != 1 {
			s = "s"
		}
		log.Printf("%d file%s uploaded in %.2f seconds.\n", len(files), s, time.Since(start).Seconds())
	}
	if status.ViewURL != "" {
		fmt.Printf("%s%s\n", *server, status.ViewURL)
	}
}
