// Package database provides SQLite-based persistence for scan results.
//
// Crawled pages and complete scan reports are stored in a single
// database file, which enables scan history queries and re-rendering
// reports without re-scanning the target.
//
// Design decision: We use modernc.org/sqlite (a pure-Go SQLite port)
// rather than mattn/go-sqlite3 because it requires no cgo, keeping
// cross-compilation trivial.
package database
