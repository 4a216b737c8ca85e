// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package app

import (
	"context"
	"errors"
	"sync"

	"github.com/nick29581/rustc-perf/compare"
)

// ErrStaleResponse is returned by Load when its response arrives
// after a newer Load has started; the response is discarded.
var ErrStaleResponse = errors.New("stale comparison response discarded")

// Derived is everything computed from one document and one set of
// criteria. It is rebuilt wholesale on every change; nothing is
// patched in place.
type Derived struct {
	// Cases annotates every comparison, in document order.
	Cases []compare.TestCase
	// Ranked is the filtered subset in display order.
	Ranked []compare.TestCase
	// Summary aggregates the full set and the filtered subset.
	Summary compare.Summary
}

// CompareState holds one viewer's comparison: the loaded document,
// the filter criteria, and the state derived from them. Every derived
// structure is a pure function of those two inputs.
type CompareState struct {
	provider Provider

	mu       sync.Mutex
	loading  bool
	token    uint64 // increments per Load; stale responses lose
	doc      *compare.Document
	criteria *compare.Criteria
	derived  *Derived
}

// NewCompareState returns a state with no data and match-everything
// criteria.
func NewCompareState(p Provider) *CompareState {
	return &CompareState{provider: p, criteria: compare.NewCriteria()}
}

// Load fetches the document for the given query and recomputes the
// derived state. If a newer Load starts before this one's response
// settles, the response is dropped and Load returns ErrStaleResponse.
// On a fetch error the previous document and derived state are kept.
func (s *CompareState) Load(ctx context.Context, start, end, stat string) error {
	s.mu.Lock()
	s.loading = true
	s.token++
	token := s.token
	s.mu.Unlock()

	doc, err := s.provider.Compare(ctx, start, end, stat)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		return ErrStaleResponse
	}
	s.loading = false
	if err != nil {
		return err
	}
	s.doc = doc
	s.recomputeLocked()
	return nil
}

// Loading reports whether a fetch is in flight.
func (s *CompareState) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Document returns the currently loaded document, or nil.
func (s *CompareState) Document() *compare.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// SetCriteria replaces the filter criteria and recomputes everything
// derived from them.
func (s *CompareState) SetCriteria(cr *compare.Criteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = cr
	if s.doc != nil {
		s.recomputeLocked()
	}
}

// Criteria returns the current filter criteria.
func (s *CompareState) Criteria() *compare.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// Derived returns the current derived state, or nil before the first
// successful Load.
func (s *CompareState) Derived() *Derived {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.derived
}

func (s *CompareState) recomputeLocked() {
	categories := compare.ResolveCategories(s.doc.BenchmarkData)
	cases := compare.Transform(s.doc.Comparisons, categories)
	s.derived = &Derived{
		Cases:   cases,
		Ranked:  compare.Rank(s.criteria.Filter(cases)),
		Summary: compare.Summarize(s.doc.Comparisons, s.criteria.FilteredKeys(cases)),
	}
}
