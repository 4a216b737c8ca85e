// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nick29581/rustc-perf/compare"
	"github.com/nick29581/rustc-perf/storage/db/dbtest"
)

func testApp(t *testing.T) (*App, *httptest.Server, func()) {
	db, cleanup := dbtest.NewDB(t)
	app := &App{DB: db}
	mux := http.NewServeMux()
	app.RegisterOnMux(mux)
	srv := httptest.NewServer(mux)
	return app, srv, func() {
		srv.Close()
		cleanup()
	}
}

func uploadReports(t *testing.T, srv *httptest.Server, reports ...string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mpw := multipart.NewWriter(&body)
	for i, rep := range reports {
		w, err := mpw.CreateFormFile("file", fmt.Sprintf("report%d.json", i))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(rep)); err != nil {
			t.Fatal(err)
		}
	}
	mpw.WriteField("commit", "1")
	mpw.Close()

	resp, err := http.Post(srv.URL+"/upload", mpw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

const (
	reportC1 = `{"commit": "c1", "benchmarks": [
		{"benchmark": "syn", "profile": "check", "scenario": "full", "stats": {"instructions:u": 1000}},
		{"benchmark": "helloworld", "profile": "debug", "scenario": "incr-full", "stats": {"instructions:u": 400}}
	], "benchmark_data": [{"name": "syn", "category": "primary"}]}`
	reportC2 = `{"commit": "c2", "benchmarks": [
		{"benchmark": "syn", "profile": "check", "scenario": "full", "stats": {"instructions:u": 1500}},
		{"benchmark": "helloworld", "profile": "debug", "scenario": "incr-full", "stats": {"instructions:u": 400}}
	]}`
)

func TestUploadAndGet(t *testing.T) {
	_, srv, cleanup := testApp(t)
	defer cleanup()

	resp := uploadReports(t, srv, reportC1, reportC2)
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("upload status = %d, want 200", resp.StatusCode)
	}
	var status uploadStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decoding upload status: %v", err)
	}
	if len(status.Commits) != 2 || status.Commits[0] != "c1" || status.Commits[1] != "c2" {
		t.Errorf("Commits = %v, want [c1 c2]", status.Commits)
	}
	if status.ViewURL == "" {
		t.Error("ViewURL is empty, want comparison link")
	}

	getResp, err := http.Get(srv.URL + "/perf/get?start=c1&end=c2")
	if err != nil {
		t.Fatal(err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != 200 {
		t.Fatalf("get status = %d, want 200", getResp.StatusCode)
	}
	var doc compare.Document
	if err := json.NewDecoder(getResp.Body).Decode(&doc); err != nil {
		t.Fatalf("decoding document: %v", err)
	}
	if doc.A.Commit != "c1" || doc.B.Commit != "c2" {
		t.Errorf("A, B = %q, %q, want c1, c2", doc.A.Commit, doc.B.Commit)
	}
	if len(doc.Comparisons) != 2 {
		t.Fatalf("len(Comparisons) = %d, want 2", len(doc.Comparisons))
	}
	if len(doc.BenchmarkData) != 1 || doc.BenchmarkData[0].Name != "syn" {
		t.Errorf("BenchmarkData = %v, want syn metadata", doc.BenchmarkData)
	}
	if !doc.IsContiguous {
		t.Error("IsContiguous = false, want true")
	}
}

func TestUploadErrors(t *testing.T) {
	_, srv, cleanup := testApp(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/upload")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /upload status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}

	resp = uploadReports(t, srv, `{"benchmarks": []}`)
	resp.Body.Close()
	if resp.StatusCode != 500 {
		t.Errorf("invalid report upload status = %d, want 500", resp.StatusCode)
	}
}

// A body that ends mid-part is a malformed upload, not a short form;
// the handler must report the failure even though earlier parts were
// already stored.
func TestUploadTruncated(t *testing.T) {
	_, srv, cleanup := testApp(t)
	defer cleanup()

	var body bytes.Buffer
	mpw := multipart.NewWriter(&body)
	for i, rep := range []string{reportC1, reportC2} {
		w, err := mpw.CreateFormFile("file", fmt.Sprintf("report%d.json", i))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(rep)); err != nil {
			t.Fatal(err)
		}
	}
	mpw.Close()

	// Cut the body in the middle of the second part's headers. The
	// first part is still complete and parses.
	raw := body.Bytes()
	idx := bytes.LastIndex(raw, []byte("Content-Disposition"))
	if idx < 0 {
		t.Fatal("no Content-Disposition header in multipart body")
	}
	truncated := raw[:idx+10]

	resp, err := http.Post(srv.URL+"/upload", mpw.FormDataContentType(), bytes.NewReader(truncated))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 500 {
		t.Errorf("truncated upload status = %d, want 500", resp.StatusCode)
	}
}

func TestGetErrors(t *testing.T) {
	_, srv, cleanup := testApp(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/perf/get?start=c1")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Errorf("missing end status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/perf/get?start=c1&end=c2")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("unknown artifact status = %d, want 404", resp.StatusCode)
	}
}
