// Package storage groups the persistence adapters behind ports.KeyValueStore.
//
//   - memory: process-lifetime map, used for the session store and tests
//   - bolt: single-file bbolt database, the durable default
//   - sqlite: a kv table in a SQLite file via the pure-Go modernc driver
//
// Adapters return raw errors; the application layer wraps them in
// domain.PersistenceError.
package storage
