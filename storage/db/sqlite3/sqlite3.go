// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

// Package sqlite3 provides the sqlite3 driver for the db package.
// Importing it registers an open hook that enables foreign-key
// enforcement on every new connection.
package sqlite3

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nick29581/rustc-perf/storage/db"
)

func init() {
	db.RegisterOpenHook("sqlite3", func(d *sql.DB) error {
		_, err := d.Exec("PRAGMA foreign_keys = ON")
		return err
	})
}
