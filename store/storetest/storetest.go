// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package storetest opens empty result databases for tests.
package storetest

import (
	"context"
	"flag"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/hpcprof/wlclass/store"
	_ "github.com/hpcprof/wlclass/store/sqlite3"
)

var mysqlDSN = flag.String("mysql", "", "run store tests against this MySQL `dsn` instead of in-memory SQLite")

// NewDB makes a connection to a testing database, either an in-memory
// sqlite3 database or the MySQL database named by the -mysql flag.
// The database is closed when the test finishes.
func NewDB(t *testing.T) *store.DB {
	t.Helper()
	driverName, dataSourceName := "sqlite3", ":memory:"
	if *mysqlDSN != "" {
		driverName, dataSourceName = "mysql", *mysqlDSN
	}
	d, err := store.OpenSQL(driverName, dataSourceName)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	// Make sure the database really is empty.
	runs, err := d.CountRuns(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if runs != 0 {
		t.Fatalf("found %d row(s) in Runs, want 0", runs)
	}
	return d
}
