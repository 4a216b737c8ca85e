// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

// Package report defines the run-report format uploaded by the
// benchmark collector: every metric measured for one artifact, plus
// benchmark metadata and bootstrap timings.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nick29581/rustc-perf/compare"
)

// A Measurement holds every metric recorded for one test case during
// a collector run.
type Measurement struct {
	Benchmark string             `json:"benchmark"`
	Profile   string             `json:"profile"`
	Scenario  string             `json:"scenario"`
	Stats     map[string]float64 `json:"stats"`
	Dodgy     bool               `json:"dodgy,omitempty"`
}

// A Report is one collector run against one artifact.
type Report struct {
	Commit        string             `json:"commit"`
	PR            *int               `json:"pr,omitempty"`
	Date          string             `json:"date,omitempty"`
	Benchmarks    []Measurement      `json:"benchmarks"`
	BenchmarkData []compare.Metadata `json:"benchmark_data,omitempty"`
	Bootstrap     map[string]float64 `json:"bootstrap,omitempty"`
}

// Read decodes and validates a report from r.
func Read(r io.Reader) (*Report, error) {
	dec := json.NewDecoder(r)
	var rep Report
	if err := dec.Decode(&rep); err != nil {
		return nil, fmt.Errorf("decoding report: %v", err)
	}
	if err := rep.Validate(); err != nil {
		return nil, err
	}
	return &rep, nil
}

// Validate checks the structural invariants the storage layer relies
// on. Measurement magnitudes are counts or durations and therefore
// never negative.
func (r *Report) Validate() error {
	if r.Commit == "" {
		return fmt.Errorf("report has no commit")
	}
	for i, m := range r.Benchmarks {
		if m.Benchmark == "" {
			return fmt.Errorf("benchmarks[%d] has no benchmark name", i)
		}
		if m.Profile == "" || m.Scenario == "" {
			return fmt.Errorf("benchmarks[%d] (%s) has no profile or scenario", i, m.Benchmark)
		}
		for metric, v := range m.Stats {
			if v < 0 {
				return fmt.Errorf("benchmarks[%d] (%s) has negative %s: %v", i, m.Benchmark, metric, v)
			}
		}
	}
	for i, md := range r.BenchmarkData {
		if md.Name == "" {
			return fmt.Errorf("benchmark_data[%d] has no name", i)
		}
	}
	return nil
}
