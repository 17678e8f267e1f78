package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLStore keeps credentials in a relational table. It works with any
// database/sql driver using ? placeholders (MySQL syntax). Requires:
//
//	CREATE TABLE credential_store (
//	    k VARCHAR(64) PRIMARY KEY,
//	    v TEXT NOT NULL,
//	    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
//	        ON UPDATE CURRENT_TIMESTAMP
//	);
type SQLStore struct {
	db    *sql.DB
	table string
}

// SQLStoreOption configures a SQLStore.
type SQLStoreOption func(*SQLStore)

// WithSQLTableName overrides the table name. Default: "credential_store".
func WithSQLTableName(name string) SQLStoreOption {
	return func(s *SQLStore) { s.table = name }
}

// NewSQLStore wraps an existing database handle. The driver must already be
// registered by the caller.
func NewSQLStore(db *sql.DB, opts ...SQLStoreOption) *SQLStore {
	s := &SQLStore{db: db, table: "credential_store"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT v FROM %s WHERE k=? LIMIT 1", s.table),
		key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("credstore: sql get %s: %w", key, err)
	}
	return v, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (k, v) VALUES (?,?) ON DUPLICATE KEY UPDATE v=VALUES(v)", s.table),
		key, value)
	if err != nil {
		return fmt.Errorf("credstore: sql set %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE k=?", s.table), key)
	if err != nil {
		return fmt.Errorf("credstore: sql delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }
