// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

// Store is a keyed document store organized into logical tables. Tables are
// created on demand: reading a table that was never written to behaves as an
// empty collection, never as an error.
//
// The store only persists documents. Decision lifecycle transitions are
// owned by the managers layered on top of it.
type Store interface {
	// Get returns the raw document at (table, key), reporting presence.
	Get(table, key string) ([]byte, bool, error)

	// Put JSON-marshals doc and upserts it at (table, key).
	Put(table, key string, doc any) error

	// Delete removes the document at (table, key), reporting whether one
	// existed.
	Delete(table, key string) (bool, error)

	// List returns every document in a table in key order.
	List(table string) ([][]byte, error)

	// Tables returns the names of all tables that currently hold at least
	// one document.
	Tables() ([]string, error)

	// DropTable removes a table and everything in it.
	DropTable(table string) error
}
