// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"testing"

	"github.com/nick29581/rustc-perf/compare"
)

// fakeProvider returns canned documents keyed by "start end stat",
// optionally blocking until released.
type fakeProvider struct {
	docs    map[string]*compare.Document
	err     error
	release chan struct{} // if non-nil, Compare blocks on it
}

func (p *fakeProvider) Compare(ctx context.Context, start, end, stat string) (*compare.Document, error) {
	if p.release != nil {
		<-p.release
	}
	if p.err != nil {
		return nil, p.err
	}
	doc, ok := p.docs[start+" "+end+" "+stat]
	if !ok {
		return nil, fmt.Errorf("no document for %s..%s", start, end)
	}
	return doc, nil
}

func testDocument(commitA, commitB string) *compare.Document {
	return &compare.Document{
		A: compare.ArtifactDescription{Commit: commitA},
		B: compare.ArtifactDescription{Commit: commitB},
		Comparisons: []compare.Comparison{
			{Benchmark: "syn", Profile: "check", Scenario: "full",
				Statistics: [2]float64{100, 110}, IsSignificant: true, Magnitude: "large"},
			{Benchmark: "ripgrep", Profile: "opt", Scenario: "incr-full",
				Statistics: [2]float64{200, 190}, IsSignificant: true, Magnitude: "large"},
			{Benchmark: "helloworld", Profile: "debug", Scenario: "full",
				Statistics: [2]float64{500, 501}, Magnitude: "very small"},
		},
		BenchmarkData: []compare.Metadata{{Name: "syn", Category: compare.CategoryPrimary}},
		IsContiguous:  true,
	}
}

func TestStateLoad(t *testing.T) {
	p := &fakeProvider{docs: map[string]*compare.Document{
		"c1 c2 instructions:u": testDocument("c1", "c2"),
	}}
	s := NewCompareState(p)

	if s.Derived() != nil {
		t.Fatal("Derived() != nil before first load")
	}
	if err := s.Load(context.Background(), "c1", "c2", "instructions:u"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Loading() {
		t.Error("Loading() = true after load settled")
	}

	d := s.Derived()
	if len(d.Cases) != 3 {
		t.Fatalf("len(Cases) = %d, want 3", len(d.Cases))
	}
	// Ranked: syn +10% first, ripgrep -5%, helloworld +0.2% last.
	want := []string{"syn", "ripgrep", "helloworld"}
	for i, name := range want {
		if d.Ranked[i].Benchmark != name {
			t.Errorf("Ranked[%d] = %q, want %q", i, d.Ranked[i].Benchmark, name)
		}
	}
	if d.Ranked[0].Category != compare.CategoryPrimary {
		t.Errorf("syn category = %q, want primary", d.Ranked[0].Category)
	}
	if d.Summary.All.Regressions != 1 || d.Summary.All.Improvements != 1 || d.Summary.All.Unchanged != 1 {
		t.Errorf("Summary.All = %+v, want 1/1/1", d.Summary.All)
	}
}

func TestStateSetCriteria(t *testing.T) {
	p := &fakeProvider{docs: map[string]*compare.Document{
		"c1 c2 instructions:u": testDocument("c1", "c2"),
	}}
	s := NewCompareState(p)
	if err := s.Load(context.Background(), "c1", "c2", "instructions:u"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	cr := compare.NewCriteria()
	cr.SignificantOnly = true
	s.SetCriteria(cr)

	d := s.Derived()
	if len(d.Ranked) != 2 {
		t.Fatalf("len(Ranked) = %d, want 2 after filtering", len(d.Ranked))
	}
	// The full-set summary is unaffected by filtering; the filtered
	// one now excludes the insignificant case.
	if d.Summary.All.Unchanged != 1 {
		t.Errorf("Summary.All.Unchanged = %d, want 1", d.Summary.All.Unchanged)
	}
	if d.Summary.Filtered.Unchanged != 0 {
		t.Errorf("Summary.Filtered.Unchanged = %d, want 0", d.Summary.Filtered.Unchanged)
	}
}

func TestStateLoadError(t *testing.T) {
	good := &fakeProvider{docs: map[string]*compare.Document{
		"c1 c2 instructions:u": testDocument("c1", "c2"),
	}}
	s := NewCompareState(good)
	if err := s.Load(context.Background(), "c1", "c2", "instructions:u"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	s.provider = &fakeProvider{err: errors.New("provider down")}
	if err := s.Load(context.Background(), "c2", "c3", "instructions:u"); err == nil {
		t.Fatal("Load succeeded, want error")
	}
	// The busy flag clears and the previous data stays.
	if s.Loading() {
		t.Error("Loading() = true after failed load")
	}
	if doc := s.Document(); doc == nil || doc.A.Commit != "c1" {
		t.Errorf("Document() = %v, want previous c1..c2 document", doc)
	}
}

// An overlapping load wins over an earlier one even when the earlier
// response arrives later.
func TestStateLoadStale(t *testing.T) {
	slow := make(chan struct{})
	p := &fakeProvider{
		docs: map[string]*compare.Document{
			"c1 c2 instructions:u": testDocument("c1", "c2"),
			"c3 c4 instructions:u": testDocument("c3", "c4"),
		},
		release: slow,
	}
	s := NewCompareState(p)

	waitToken := func(n uint64) {
		for {
			s.mu.Lock()
			tok := s.token
			s.mu.Unlock()
			if tok >= n {
				return
			}
			runtime.Gosched()
		}
	}

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- s.Load(context.Background(), "c1", "c2", "instructions:u")
	}()
	waitToken(1)

	secondDone := make(chan error, 1)
	go func() {
		secondDone <- s.Load(context.Background(), "c3", "c4", "instructions:u")
	}()
	waitToken(2)

	// Both fetches are in flight and the second request holds the
	// newest token. Release them; the first response must be dropped
	// no matter which settles first.
	close(slow)
	err1, err2 := <-firstDone, <-secondDone

	if !errors.Is(err1, ErrStaleResponse) {
		t.Errorf("first Load = %v, want ErrStaleResponse", err1)
	}
	if err2 != nil {
		t.Fatalf("second Load: %v", err2)
	}
	if doc := s.Document(); doc == nil || doc.A.Commit != "c3" {
		t.Errorf("Document() = %v, want c3..c4 document", doc)
	}
	if s.Loading() {
		t.Error("Loading() = true after both loads settled")
	}
}
