// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

// Comparestat formats and filters benchmark comparison results.
//
// Usage:
//
//	comparestat [-filter substring] [-significant] [-exclude-very-small]
//	            [-scenarios list] [-categories list] [-html] document.json
//
// The input is one comparison document in the JSON form served by the
// storage server's /perf/get endpoint: two artifacts, their paired
// statistic deltas, and per-benchmark metadata. The argument is a file
// path, or an http(s) URL to fetch the document from.
//
// Comparestat annotates every comparison with its percent change and
// category, applies the requested filters, and prints the surviving
// test cases ranked by the size of their change, largest first.
// Two summaries follow the table: one over the full document and one
// over the displayed subset.
//
// The -scenarios and -categories options take comma-separated lists
// and hide every class not listed. When absent, nothing is hidden.
//
// The -html option causes comparestat to print the results as HTML
// tables.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/nick29581/rustc-perf/compare"
	"github.com/nick29581/rustc-perf/comparetable"
)

var exit = os.Exit // replaced during testing

func usage() {
	fmt.Fprintf(os.Stderr, "usage: comparestat [options] document.json\n")
	fmt.Fprintf(os.Stderr, "options:\n")
	flag.PrintDefaults()
	exit(2)
}

var (
	flagFilter      = flag.String("filter", "", "show only test cases whose name contains `substring`")
	flagSignificant = flag.Bool("significant", false, "show only significant changes")
	flagNoVerySmall = flag.Bool("exclude-very-small", false, "hide very small changes")
	flagScenarios   = flag.String("scenarios", "", "show only the scenario `classes` listed (comma-separated)")
	flagCategories  = flag.String("categories", "", "show only the benchmark `categories` listed (comma-separated)")
	flagHTML        = flag.Bool("html", false, "print results as HTML tables")
)

func main() {
	log.SetPrefix("comparestat: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	if err := comparestat(os.Stdout, flag.Arg(0)); err != nil {
		log.Fatal(err)
	}
}

// comparestat runs one comparison end to end: read the document, apply
// the filter flags, and write the ranked table plus summaries to w.
func comparestat(w io.Writer, name string) error {
	doc, err := readDocument(name)
	if err != nil {
		return err
	}

	criteria, err := criteriaFromFlags()
	if err != nil {
		return err
	}
	categories := compare.ResolveCategories(doc.BenchmarkData)
	cases := compare.Transform(doc.Comparisons, categories)
	ranked := compare.Rank(criteria.Filter(cases))
	summary := compare.Summarize(doc.Comparisons, criteria.FilteredKeys(cases))

	table := comparetable.New(ranked, summary)
	var buf bytes.Buffer
	if *flagHTML {
		comparetable.FormatHTML(&buf, table)
	} else {
		fmt.Fprintf(&buf, "comparing %s and %s\n\n", doc.A.Commit, doc.B.Commit)
		comparetable.FormatText(&buf, table)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func criteriaFromFlags() (*compare.Criteria, error) {
	cr := compare.NewCriteria()
	cr.Name = *flagFilter
	cr.SignificantOnly = *flagSignificant
	cr.ExcludeVerySmall = *flagNoVerySmall

	if *flagScenarios != "" {
		enabled := map[compare.ScenarioClass]bool{}
		for _, s := range strings.Split(*flagScenarios, ",") {
			class, ok := compare.ClassifyScenario(strings.TrimSpace(s))
			if !ok {
				return nil, fmt.Errorf("unknown scenario class %q", s)
			}
			enabled[class] = true
		}
		cr.Scenarios = enabled
	}
	if *flagCategories != "" {
		enabled := map[compare.Category]bool{}
		for _, c := range strings.Split(*flagCategories, ",") {
			switch cat := compare.Category(strings.TrimSpace(c)); cat {
			case compare.CategoryPrimary, compare.CategorySecondary:
				enabled[cat] = true
			default:
				return nil, fmt.Errorf("unknown category %q", c)
			}
		}
		cr.Categories = enabled
	}
	return cr, nil
}

// readDocument loads a comparison document from a file path or an
// http(s) URL.
func readDocument(name string) (*compare.Document, error) {
	doc := new(compare.Document)
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		resp, err := http.Get(name)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != 200 {
			return nil, fmt.Errorf("fetch %s: %s", name, resp.Status)
		}
		if err := json.NewDecoder(resp.Body).Decode(doc); err != nil {
			return nil, fmt.Errorf("parse %s: %v", name, err)
		}
		return doc, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(doc); err != nil {
		return nil, fmt.Errorf("parse %s: %v", name, err)
	}
	return doc, nil
}
