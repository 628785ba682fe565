// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// SQLStore implements Store over a single physical table. Logical tables are
// a column, which is what gives "table does not exist yet" its empty-
// collection semantics for free. The SQL text uses $1 placeholders and
// works unchanged on sqlite and postgres.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// CreateSchema creates the backing table.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Documents: one row per (logical table, key)
CREATE TABLE IF NOT EXISTS document (
    tbl TEXT NOT NULL,
    key TEXT NOT NULL,
    doc TEXT NOT NULL,
    PRIMARY KEY (tbl, key)
);

CREATE INDEX IF NOT EXISTS idx_document_tbl ON document(tbl);
`

func (s *SQLStore) Get(table, key string) ([]byte, bool, error) {
	var doc []byte
	err := s.db.QueryRow(`
		SELECT doc FROM document WHERE tbl = $1 AND key = $2
	`, table, key).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s/%s: %w", table, key, err)
	}
	return doc, true, nil
}

func (s *SQLStore) Put(table, key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", table, key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO document (tbl, key, doc) VALUES ($1, $2, $3)
		ON CONFLICT (tbl, key) DO UPDATE SET doc = excluded.doc
	`, table, key, string(raw))
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", table, key, err)
	}
	return nil
}

func (s *SQLStore) Delete(table, key string) (bool, error) {
	res, err := s.db.Exec(`
		DELETE FROM document WHERE tbl = $1 AND key = $2
	`, table, key)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s/%s: %w", table, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete %s/%s: %w", table, key, err)
	}
	return n > 0, nil
}

func (s *SQLStore) List(table string) ([][]byte, error) {
	rows, err := s.db.Query(`
		SELECT doc FROM document WHERE tbl = $1 ORDER BY key
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", table, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLStore) Tables() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT tbl FROM document ORDER BY tbl
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tbl string
		if err := rows.Scan(&tbl); err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
		tables = append(tables, tbl)
	}
	return tables, rows.Err()
}

func (s *SQLStore) DropTable(table string) error {
	_, err := s.db.Exec(`
		DELETE FROM document WHERE tbl = $1
	`, table)
	if err != nil {
		return fmt.Errorf("failed to drop %s: %w", table, err)
	}
	return nil
}
