// Package database provides SQLite-based history storage for waveload.
//
// HistoryDB stores one row per run and one row per completed wave, so past
// runs can be listed and rendered by the history command. Rows hold timing
// and counts only; responses are never stored.
//
// The driver is modernc.org/sqlite, a CGO-free SQLite implementation, so the
// binary stays statically linkable.
package database
