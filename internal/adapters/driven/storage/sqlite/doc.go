// Package sqlite provides a SQLite-based implementation of the local
// vector index and chunk store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements two port interfaces
// through a single database connection:
//
//   - VectorIndex: Vectors stored as little-endian float32 BLOBs, searched
//     by a brute-force scan
//   - ChunkStore: The prepared document and its ordered chunk list, so a
//     later process can answer questions without preparing again
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.docqa/data/docqa.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
