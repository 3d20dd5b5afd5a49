// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sqlite3 provides the sqlite3 driver for
// github.com/hpcprof/wlclass/store. It must be imported
// instead of go-sqlite3 to ensure foreign keys are properly honored.
package sqlite3

import (
	"database/sql"

	"github.com/hpcprof/wlclass/store"
	sqlite3 "github.com/mattn/go-sqlite3"
)

func init() {
	store.RegisterOpenHook("sqlite3", func(db *sql.DB) error {
		// An in-memory database exists per connection.
		db.SetMaxOpenConns(1)
		db.Driver().(*sqlite3.SQLiteDriver).ConnectHook = func(c *sqlite3.SQLiteConn) error {
			_, err := c.Exec("PRAGMA foreign_keys = ON;", nil)
			return err
		}
		return nil
	})
}
