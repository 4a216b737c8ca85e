// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package compare

import "strings"

// A ScenarioClass is the build mode a benchmark ran under, as exposed
// to filtering. Concrete scenario strings like "incr-patched: println"
// all map to ScenarioIncrPatched.
type ScenarioClass string

const (
	ScenarioFull          ScenarioClass = "full"
	ScenarioIncrFull      ScenarioClass = "incr-full"
	ScenarioIncrUnchanged ScenarioClass = "incr-unchanged"
	ScenarioIncrPatched   ScenarioClass = "incr-patched"
)

// ClassifyScenario maps a concrete scenario string to its class. The
// second result is false for scenario strings the engine does not
// understand; such cases are never hidden by the scenario toggles.
func ClassifyScenario(scenario string) (ScenarioClass, bool) {
	switch scenario {
	case "full":
		return ScenarioFull, true
	case "incr-full":
		return ScenarioIncrFull, true
	case "incr-unchanged":
		return ScenarioIncrUnchanged, true
	}
	if strings.HasPrefix(scenario, "incr-patched") {
		return ScenarioIncrPatched, true
	}
	return "", false
}

// Criteria is the user's filter state for one viewing session. The
// scenario and category toggles are explicit sets so that the
// fail-open behavior for unrecognized tags is a deliberate branch
// rather than a missing case.
//
// Mutating any field invalidates every structure derived from the
// previous criteria; there is no partial invalidation.
type Criteria struct {
	// Name, after trimming, must be a substring of the test case's
	// "benchmark profile scenario" key. Empty matches everything.
	Name string

	SignificantOnly  bool
	ExcludeVerySmall bool

	// Scenarios and Categories hold the enabled classes. A class
	// absent from the map is disabled.
	Scenarios  map[ScenarioClass]bool
	Categories map[Category]bool
}

// NewCriteria returns criteria that match every test case: all
// scenario classes and categories enabled, no name pattern, no
// significance or magnitude restriction.
func NewCriteria() *Criteria {
	return &Criteria{
		Scenarios: map[ScenarioClass]bool{
			ScenarioFull:          true,
			ScenarioIncrFull:      true,
			ScenarioIncrUnchanged: true,
			ScenarioIncrPatched:   true,
		},
		Categories: map[Category]bool{
			CategoryPrimary:   true,
			CategorySecondary: true,
		},
	}
}

// Match reports whether tc passes all five sub-predicates: scenario
// class, category, name substring, significance, and magnitude.
func (cr *Criteria) Match(tc *TestCase) bool {
	return cr.matchScenario(tc) &&
		cr.matchCategory(tc) &&
		cr.matchName(tc) &&
		cr.matchSignificance(tc) &&
		cr.matchMagnitude(tc)
}

func (cr *Criteria) matchScenario(tc *TestCase) bool {
	class, ok := ClassifyScenario(tc.Scenario)
	if !ok {
		// Unclassifiable scenarios are always shown.
		return true
	}
	return cr.Scenarios[class]
}

func (cr *Criteria) matchCategory(tc *TestCase) bool {
	switch tc.Category {
	case CategoryPrimary, CategorySecondary:
		return cr.Categories[tc.Category]
	}
	// Unknown categories are always shown.
	return true
}

func (cr *Criteria) matchName(tc *TestCase) bool {
	pattern := strings.TrimSpace(cr.Name)
	if pattern == "" {
		return true
	}
	return strings.Contains(tc.Key(), pattern)
}

func (cr *Criteria) matchSignificance(tc *TestCase) bool {
	return !cr.SignificantOnly || tc.IsSignificant
}

func (cr *Criteria) matchMagnitude(tc *TestCase) bool {
	return !cr.ExcludeVerySmall || tc.Magnitude != MagnitudeVerySmall
}

// Filter returns the test cases matching cr, in input order.
func (cr *Criteria) Filter(cases []TestCase) []TestCase {
	var out []TestCase
	for i := range cases {
		if cr.Match(&cases[i]) {
			out = append(out, cases[i])
		}
	}
	return out
}

// FilteredKeys returns the identity keys of the test cases matching
// cr, for use as the filtered scope of Summarize.
func (cr *Criteria) FilteredKeys(cases []TestCase) map[string]bool {
	keys := make(map[string]bool)
	for i := range cases {
		if cr.Match(&cases[i]) {
			keys[cases[i].Key()] = true
		}
	}
	return keys
}
