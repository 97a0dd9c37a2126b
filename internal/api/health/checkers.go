package health

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteChecker checks SQLite database connectivity.
type SQLiteChecker struct {
	db *sql.DB
}

// NewSQLiteChecker creates a new SQLite health checker.
func NewSQLiteChecker(db *sql.DB) *SQLiteChecker {
	return &SQLiteChecker{db: db}
}

// Name returns the checker name.
func (c *SQLiteChecker) Name() string {
	return "sqlite"
}

// Check verifies the SQLite database is accessible.
func (c *SQLiteChecker) Check(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return c.db.PingContext(ctx)
}

// BlobStoreChecker checks that the upload directory is writable.
type BlobStoreChecker struct {
	probe func() error
}

// NewBlobStoreChecker creates a blob storage health checker.
func NewBlobStoreChecker(probe func() error) *BlobStoreChecker {
	return &BlobStoreChecker{probe: probe}
}

// Name returns the checker name.
func (c *BlobStoreChecker) Name() string {
	return "blobstore"
}

// Check verifies blob storage is usable.
func (c *BlobStoreChecker) Check(ctx context.Context) error {
	if c.probe == nil {
		return fmt.Errorf("blob storage not configured")
	}
	return c.probe()
}
