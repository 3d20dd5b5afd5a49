// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store records classification results in a SQL database.
//
// Each invocation of a classifier is a run. A run has a random ID and
// holds the results of every unknown workload classified in it.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/hpcprof/wlclass/classify"
)

// DB is a high-level interface to a result database. It's safe for
// concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertRun    *sql.Stmt
	insertResult *sql.Stmt
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
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// ParseDSN splits a "driver:dsn" string as accepted by ctrclass -db.
func ParseDSN(s string) (driverName, dataSourceName string, err error) {
	driverName, dataSourceName, ok := strings.Cut(s, ":")
	if !ok || driverName == "" {
		return "", "", fmt.Errorf("database %q: want driver:dsn", s)
	}
	return driverName, dataSourceName, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a
// connection to driverName. This is used by the sqlite3 package to
// register a ConnectHook. It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID VARCHAR(36) PRIMARY KEY,
	Name VARCHAR(255),
	Created BIGINT
);
CREATE TABLE IF NOT EXISTS Results (
	RunID VARCHAR(36),
	Seq INTEGER,
	Name VARCHAR(255),
	Class VARCHAR(255),
	Cosine DOUBLE,
	Distance DOUBLE,
	Closeness DOUBLE,
	PRIMARY KEY (RunID, Seq),
{{if not .sqlite3}}
	Index (Class),
{{end}}
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS ResultsClass ON Results(Class);
{{end}}
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
func (db *DB) prepareStatements() error {
	var err error
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(RunID, Name, Created) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertResult, err = db.sql.Prepare("INSERT INTO Results(RunID, Seq, Name, Class, Cosine, Distance, Closeness) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// now is a hook for testing
var now = time.Now

// A Run is a set of classification results stored together.
type Run struct {
	// ID is the unique ID of the run.
	ID string
	// Name describes the run, typically the class set it used.
	Name string
	// Created is when the run was started, to the second.
	Created time.Time

	// seq is the index of the next result to insert.
	seq int64
	db  *DB
}

// NewRun creates and returns a new run for storing results.
func (db *DB) NewRun(ctx context.Context, name string) (*Run, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	created := now().UTC().Truncate(time.Second)
	if _, err := db.insertRun.ExecContext(ctx, id.String(), name, created.Unix()); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &Run{ID: id.String(), Name: name, Created: created, db: db}, nil
}

// InsertResults appends results to the run in a single transaction.
func (r *Run) InsertResults(ctx context.Context, results []classify.Result) (err error) {
	tx, err := r.db.sql.BeginTx(ctx, nil)
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
	stmt := tx.StmtContext(ctx, r.db.insertResult)
	seq := r.seq
	for _, res := range results {
		if _, err = stmt.ExecContext(ctx, r.ID, seq, res.Name, res.Class, res.Cosine, res.Distance, res.Closeness); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
		seq++
	}
	r.seq = seq
	return nil
}

// Results returns the results stored in run id, in insertion order.
func (db *DB) Results(ctx context.Context, id string) ([]classify.Result, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT Name, Class, Cosine, Distance, Closeness FROM Results WHERE RunID = ? ORDER BY Seq", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []classify.Result
	for rows.Next() {
		var r classify.Result
		if err := rows.Scan(&r.Name, &r.Class, &r.Cosine, &r.Distance, &r.Closeness); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListRuns returns every run, oldest first.
func (db *DB) ListRuns(ctx context.Context) ([]*Run, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT RunID, Name, Created FROM Runs ORDER BY Created, RunID")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Run
	for rows.Next() {
		r := &Run{db: db}
		var created int64
		if err := rows.Scan(&r.ID, &r.Name, &created); err != nil {
			return nil, err
		}
		r.Created = time.Unix(created, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun deletes run id and its results.
func (db *DB) DeleteRun(ctx context.Context, id string) error {
	_, err := db.sql.ExecContext(ctx, "DELETE FROM Runs WHERE RunID = ?", id)
	return err
}

// CountRuns returns the number of runs stored in the database.
func (db *DB) CountRuns(ctx context.Context) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Runs").Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertRun.Close(); err != nil {
		return err
	}
	if err := db.insertResult.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
