// Package sqlite provides the persisted vector index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each index generation is a standalone
// database holding index metadata and every passage with its embedding stored as a
// little-endian float32 blob.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the live index is stored at ~/.paperpilot/data/vectorstore/index.db.
// Builds write to a sibling vectorstore.tmp-<generation> directory and are renamed
// into place once complete; the previous generation is then deleted.
//
// # Thread Safety
//
// Operations on one IndexStore are serialised by a mutex. The on-disk index is
// single-writer: separate processes must not build against the same data directory
// concurrently.
package sqlite
