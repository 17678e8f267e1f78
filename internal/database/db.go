package database

import (
	"context"
	"database/sql"
	"time"
)

// Open connects to the database behind the sql credential store backend and
// verifies the connection. The caller supplies a full DSN and must have
// registered the driver (the farmtrack binary blank-imports mysql).
func Open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings sized for a single-user client process.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
