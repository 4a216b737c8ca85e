// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

// Package compare implements the comparison engine for paired benchmark
// measurements: it annotates raw before/after statistics with percent
// changes and benchmark categories, filters them against user criteria,
// ranks them, and summarizes regressions and improvements.
//
// The engine consumes a Document as produced by the storage server (or
// any other provider of the same JSON shape) and never computes
// statistical significance itself; the significance flag and factor on
// each Comparison are supplied by the provider.
package compare

// A Comparison is one paired measurement from the provider: a single
// (benchmark, profile, scenario) test case measured at two artifacts.
type Comparison struct {
	Benchmark string `json:"benchmark"`
	Profile   string `json:"profile"`
	Scenario  string `json:"scenario"`

	// Statistics is the ordered (before, after) pair of measurement
	// magnitudes. Before is expected to be non-zero; when it is not,
	// the derived percent change is non-finite and propagates as-is.
	Statistics [2]float64 `json:"statistics"`

	IsSignificant      bool     `json:"is_significant"`
	SignificanceFactor *float64 `json:"significance_factor"`
	Magnitude          string   `json:"magnitude"`
	IsDodgy            bool     `json:"is_dodgy"`
}

// MagnitudeVerySmall is the smallest magnitude bucket assigned by the
// provider. It is the only bucket the filter engine knows by name.
const MagnitudeVerySmall = "very small"

// Before returns the measurement at the first artifact.
func (c *Comparison) Before() float64 { return c.Statistics[0] }

// After returns the measurement at the second artifact.
func (c *Comparison) After() float64 { return c.Statistics[1] }

// Percent returns the percent change from Before to After, computed
// with ordinary floating-point division. A zero Before yields ±Inf or
// NaN per IEEE semantics; callers must not suppress that.
func (c *Comparison) Percent() float64 {
	return 100 * (c.After() - c.Before()) / c.Before()
}

// Key returns the test-case identity, the triple joined with spaces.
// The same string is what the name filter matches against.
func (c *Comparison) Key() string {
	return c.Benchmark + " " + c.Profile + " " + c.Scenario
}

// A Category classifies a benchmark's importance.
type Category string

const (
	CategoryPrimary   Category = "primary"
	CategorySecondary Category = "secondary"
)

// Metadata describes one benchmark, keyed by Name.
type Metadata struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// An ArtifactDescription identifies one measured build.
type ArtifactDescription struct {
	Commit         string             `json:"commit"`
	PR             *int               `json:"pr,omitempty"`
	Date           string             `json:"date,omitempty"`
	Bootstrap      map[string]float64 `json:"bootstrap"`
	BootstrapTotal float64            `json:"bootstrap_total"`
}

// A Document is the provider's response to a comparison query: every
// paired measurement between artifacts A and B for one metric, plus
// benchmark metadata and revision navigation.
type Document struct {
	A             ArtifactDescription `json:"a"`
	B             ArtifactDescription `json:"b"`
	Comparisons   []Comparison        `json:"comparisons"`
	BenchmarkData []Metadata          `json:"benchmark_data"`
	Prev          string              `json:"prev,omitempty"`
	Next          string              `json:"next,omitempty"`
	IsContiguous  bool                `json:"is_contiguous"`
}

// DefaultMetric is the metric compared when a query names none.
const DefaultMetric = "instructions:u"
