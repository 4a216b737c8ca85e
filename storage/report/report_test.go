// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package report

import (
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	data := `{
		"commit": "abcdef",
		"date": "2018-03-01T12:00:00Z",
		"benchmarks": [
			{"benchmark": "syn", "profile": "check", "scenario": "full",
			 "stats": {"instructions:u": 1000, "wall-time": 1.5}},
			{"benchmark": "syn", "profile": "check", "scenario": "incr-patched: println",
			 "stats": {"instructions:u": 200}, "dodgy": true}
		],
		"benchmark_data": [{"name": "syn", "category": "primary"}],
		"bootstrap": {"expand": 12e9}
	}`
	rep, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rep.Commit != "abcdef" {
		t.Errorf("Commit = %q, want abcdef", rep.Commit)
	}
	if len(rep.Benchmarks) != 2 {
		t.Fatalf("len(Benchmarks) = %d, want 2", len(rep.Benchmarks))
	}
	if got := rep.Benchmarks[0].Stats["instructions:u"]; got != 1000 {
		t.Errorf("instructions:u = %v, want 1000", got)
	}
	if !rep.Benchmarks[1].Dodgy {
		t.Errorf("Benchmarks[1].Dodgy = false, want true")
	}
	if got := rep.Bootstrap["expand"]; got != 12e9 {
		t.Errorf("Bootstrap[expand] = %v, want 12e9", got)
	}
}

func TestReadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad json", `{"commit":`},
		{"no commit", `{"benchmarks": []}`},
		{"no benchmark name", `{"commit": "c", "benchmarks": [{"profile": "check", "scenario": "full"}]}`},
		{"no profile", `{"commit": "c", "benchmarks": [{"benchmark": "syn", "scenario": "full"}]}`},
		{"negative stat", `{"commit": "c", "benchmarks": [{"benchmark": "syn", "profile": "check", "scenario": "full", "stats": {"instructions:u": -1}}]}`},
		{"no metadata name", `{"commit": "c", "benchmark_data": [{"category": "primary"}]}`},
	}
	for _, test := range tests {
		if _, err := Read(strings.NewReader(test.data)); err == nil {
			t.Errorf("%s: Read succeeded, want error", test.name)
		}
	}
}
