// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

// Package db stores collector run reports and assembles comparison
// documents from them. It is the provider side of the system: the
// significance annotations the comparison engine consumes are computed
// here, when two artifacts are paired, never by the engine itself.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"
	"text/template"

	"github.com/aclements/go-moremath/stats"

	"github.com/nick29581/rustc-perf/compare"
	"github.com/nick29581/rustc-perf/storage/report"
)

// DB is a high-level interface to the measurement database. It's safe
// for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertArtifact    *sql.Stmt
	insertMeasurement *sql.Stmt
	insertBootstrap   *sql.Stmt
	insertMeta        *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		return nil, err
	}
	if err := d.prepareStatements(driverName); err != nil {
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to register a ConnectHook.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Artifacts (
	ArtifactID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Revision VARCHAR(255) NOT NULL UNIQUE,
	PR INT NULL,
	Date VARCHAR(64)
);
CREATE TABLE IF NOT EXISTS Measurements (
	ArtifactID BIGINT UNSIGNED,
	Benchmark VARCHAR(255),
	Profile VARCHAR(64),
	Scenario VARCHAR(255),
	Metric VARCHAR(64),
	Value DOUBLE NOT NULL,
	Dodgy BOOLEAN NOT NULL DEFAULT FALSE,
{{if .sqlite3}}
	PRIMARY KEY (ArtifactID, Benchmark, Profile, Scenario, Metric),
{{else}}
	KEY MeasurementsKey (ArtifactID, Benchmark(100), Profile(32), Scenario(100), Metric(32)),
{{end}}
	FOREIGN KEY (ArtifactID) REFERENCES Artifacts(ArtifactID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS Bootstrap (
	ArtifactID BIGINT UNSIGNED,
	Phase VARCHAR(255),
	Nanos DOUBLE NOT NULL,
	PRIMARY KEY (ArtifactID, Phase{{if not .sqlite3}}(100){{end}}),
	FOREIGN KEY (ArtifactID) REFERENCES Artifacts(ArtifactID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS BenchmarkMeta (
	Name VARCHAR(255) PRIMARY KEY,
	Category VARCHAR(32) NOT NULL
);
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements(driverName string) error {
	var err error
	db.insertArtifact, err = db.sql.Prepare("INSERT INTO Artifacts(Revision, PR, Date) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertMeasurement, err = db.sql.Prepare("INSERT INTO Measurements(ArtifactID, Benchmark, Profile, Scenario, Metric, Value, Dodgy) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertBootstrap, err = db.sql.Prepare("INSERT INTO Bootstrap(ArtifactID, Phase, Nanos) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	// REPLACE is understood by both mysql and sqlite3; the metadata
	// contract is last-seen wins.
	db.insertMeta, err = db.sql.Prepare("REPLACE INTO BenchmarkMeta(Name, Category) VALUES (?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// InsertReport stores one collector run report in a single
// transaction. A report for an already stored revision is an error.
func (db *DB) InsertReport(ctx context.Context, r *report.Report) (err error) {
	if err := r.Validate(); err != nil {
		return err
	}
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var pr interface{}
	if r.PR != nil {
		pr = *r.PR
	}
	res, err := tx.Stmt(db.insertArtifact).Exec(r.Commit, pr, r.Date)
	if err != nil {
		return fmt.Errorf("insert artifact %q: %v", r.Commit, err)
	}
	artifactID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, m := range r.Benchmarks {
		for metric, value := range m.Stats {
			if _, err := tx.Stmt(db.insertMeasurement).Exec(artifactID, m.Benchmark, m.Profile, m.Scenario, metric, value, m.Dodgy); err != nil {
				return fmt.Errorf("insert measurement for %s: %v", m.Benchmark, err)
			}
		}
	}
	for phase, nanos := range r.Bootstrap {
		if _, err := tx.Stmt(db.insertBootstrap).Exec(artifactID, phase, nanos); err != nil {
			return fmt.Errorf("insert bootstrap phase %q: %v", phase, err)
		}
	}
	for _, md := range r.BenchmarkData {
		if _, err := tx.Stmt(db.insertMeta).Exec(md.Name, string(md.Category)); err != nil {
			return fmt.Errorf("insert metadata for %q: %v", md.Name, err)
		}
	}
	return nil
}

// CountArtifacts returns the number of stored artifacts.
func (db *DB) CountArtifacts() (int, error) {
	var n int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Artifacts").Scan(&n)
	return n, err
}

// ErrNoSuchArtifact is returned by Comparison when a requested
// revision has no stored measurements.
var ErrNoSuchArtifact = fmt.Errorf("no such artifact")

type artifact struct {
	id       int64
	revision string
	pr       *int
	date     string
}

func (db *DB) artifact(ctx context.Context, revision string) (*artifact, error) {
	a := &artifact{}
	var pr sql.NullInt64
	var date sql.NullString
	err := db.sql.QueryRowContext(ctx, "SELECT ArtifactID, Revision, PR, Date FROM Artifacts WHERE Revision = ?", revision).Scan(&a.id, &a.revision, &pr, &date)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchArtifact, revision)
	}
	if err != nil {
		return nil, err
	}
	if pr.Valid {
		n := int(pr.Int64)
		a.pr = &n
	}
	a.date = date.String
	return a, nil
}

func (db *DB) describe(ctx context.Context, a *artifact) (compare.ArtifactDescription, error) {
	desc := compare.ArtifactDescription{
		Commit:    a.revision,
		PR:        a.pr,
		Date:      a.date,
		Bootstrap: map[string]float64{},
	}
	rows, err := db.sql.QueryContext(ctx, "SELECT Phase, Nanos FROM Bootstrap WHERE ArtifactID = ?", a.id)
	if err != nil {
		return desc, err
	}
	defer rows.Close()
	for rows.Next() {
		var phase string
		var nanos float64
		if err := rows.Scan(&phase, &nanos); err != nil {
			return desc, err
		}
		desc.Bootstrap[phase] = nanos
		desc.BootstrapTotal += nanos
	}
	return desc, rows.Err()
}

type measured struct {
	value float64
	dodgy bool
}

func (db *DB) measurements(ctx context.Context, artifactID int64, metric string) (map[[3]string]measured, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT Benchmark, Profile, Scenario, Value, Dodgy FROM Measurements WHERE ArtifactID = ? AND Metric = ?", artifactID, metric)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[[3]string]measured)
	for rows.Next() {
		var k [3]string
		var m measured
		if err := rows.Scan(&k[0], &k[1], &k[2], &m.value, &m.dodgy); err != nil {
			return nil, err
		}
		out[k] = m
	}
	return out, rows.Err()
}

// relThreshold is the noise floor below which a relative change is
// never significant, before per-document widening.
const relThreshold = 0.002

// dodgyNoise widens the threshold for test cases either side of which
// was flagged noisy by the collector.
const dodgyNoise = 4.0

// Comparison assembles the document for comparing the start and end
// revisions on one metric. Test cases measured for only one of the two
// artifacts are omitted; pairing requires both sides.
//
// Significance is judged against a per-document threshold: the upper
// Tukey fence (Q3 + 1.5*IQR) of the finite relative changes, floored
// at relThreshold, and widened by dodgyNoise for noisy test cases.
// significance_factor reports how many multiples of the threshold a
// change is. Changes from a zero baseline cannot be quantified; they
// are reported with a null factor.
func (db *DB) Comparison(ctx context.Context, start, end, metric string) (*compare.Document, error) {
	if metric == "" {
		metric = compare.DefaultMetric
	}
	a, err := db.artifact(ctx, start)
	if err != nil {
		return nil, err
	}
	b, err := db.artifact(ctx, end)
	if err != nil {
		return nil, err
	}

	before, err := db.measurements(ctx, a.id, metric)
	if err != nil {
		return nil, err
	}
	after, err := db.measurements(ctx, b.id, metric)
	if err != nil {
		return nil, err
	}

	type pair struct {
		key    [3]string
		pre    measured
		post   measured
		rel    float64
		finite bool
	}
	var pairs []pair
	var rels []float64
	for k, pre := range before {
		post, ok := after[k]
		if !ok {
			continue
		}
		rel := (post.value - pre.value) / pre.value
		finite := !math.IsNaN(rel) && !math.IsInf(rel, 0)
		pairs = append(pairs, pair{k, pre, post, rel, finite})
		if finite {
			rels = append(rels, math.Abs(rel))
		}
	}

	// Map iteration order is random; identical requests must produce
	// identical documents.
	sort.Slice(pairs, func(i, j int) bool {
		for n := range pairs[i].key {
			if pairs[i].key[n] != pairs[j].key[n] {
				return pairs[i].key[n] < pairs[j].key[n]
			}
		}
		return false
	})

	// Noise fence from the distribution of changes in this document,
	// per the interquartile-range outlier rule.
	fence := 0.0
	if len(rels) > 0 {
		sample := stats.Sample{Xs: rels}
		q1, q3 := sample.Quantile(0.25), sample.Quantile(0.75)
		fence = q3 + 1.5*(q3-q1)
	}
	threshold := math.Max(relThreshold, fence)

	doc := &compare.Document{}
	for _, p := range pairs {
		c := compare.Comparison{
			Benchmark:  p.key[0],
			Profile:    p.key[1],
			Scenario:   p.key[2],
			Statistics: [2]float64{p.pre.value, p.post.value},
			IsDodgy:    p.pre.dodgy || p.post.dodgy,
		}
		t := threshold
		if c.IsDodgy {
			t *= dodgyNoise
		}
		if !p.finite {
			// Zero baseline. Any change is significant but has
			// no meaningful factor.
			c.IsSignificant = p.pre.value != p.post.value
			c.Magnitude = "very large"
			if !c.IsSignificant {
				c.Magnitude = compare.MagnitudeVerySmall
			}
		} else {
			factor := math.Abs(p.rel) / t
			c.SignificanceFactor = &factor
			c.IsSignificant = factor >= 1
			c.Magnitude = magnitude(factor)
		}
		doc.Comparisons = append(doc.Comparisons, c)
	}

	if doc.A, err = db.describe(ctx, a); err != nil {
		return nil, err
	}
	if doc.B, err = db.describe(ctx, b); err != nil {
		return nil, err
	}
	if doc.BenchmarkData, err = db.metadata(ctx); err != nil {
		return nil, err
	}
	if err := db.navigation(ctx, a, b, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// magnitude buckets a significance factor into the coarse size tags
// shown in the UI.
func magnitude(factor float64) string {
	switch {
	case factor < 1:
		return compare.MagnitudeVerySmall
	case factor < 2:
		return "small"
	case factor < 5:
		return "medium"
	case factor < 20:
		return "large"
	}
	return "very large"
}

func (db *DB) metadata(ctx context.Context) ([]compare.Metadata, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT Name, Category FROM BenchmarkMeta ORDER BY Name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []compare.Metadata
	for rows.Next() {
		var md compare.Metadata
		if err := rows.Scan(&md.Name, &md.Category); err != nil {
			return nil, err
		}
		out = append(out, md)
	}
	return out, rows.Err()
}

// navigation fills in prev, next, and is_contiguous from the artifact
// insertion order.
func (db *DB) navigation(ctx context.Context, a, b *artifact, doc *compare.Document) error {
	var prev, next sql.NullString
	err := db.sql.QueryRowContext(ctx, "SELECT Revision FROM Artifacts WHERE ArtifactID < ? ORDER BY ArtifactID DESC LIMIT 1", a.id).Scan(&prev)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	err = db.sql.QueryRowContext(ctx, "SELECT Revision FROM Artifacts WHERE ArtifactID > ? ORDER BY ArtifactID ASC LIMIT 1", b.id).Scan(&next)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	doc.Prev = prev.String
	doc.Next = next.String

	var between int
	if err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Artifacts WHERE ArtifactID > ? AND ArtifactID < ?", a.id, b.id).Scan(&between); err != nil {
		return err
	}
	doc.IsContiguous = between == 0 && a.id < b.id
	return nil
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.insertArtifact, db.insertMeasurement, db.insertBootstrap, db.insertMeta} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
