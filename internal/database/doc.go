// Package database provides SQLite-based snapshot storage for pageflow.
//
// SnapshotDB keeps every saved snapshot of every document, keyed by a
// document key, so that the latest arrangement can be restored and earlier
// ones inspected. For binds the database to one document and implements the
// engine's persistence bridge.
//
// Snapshots are stored as the ordered list of descriptor records produced by
// model.MarshalSnapshot, next to their fingerprint and page and block counts.
// The driver is modernc.org/sqlite, which needs no cgo.
package database
