package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/sageexcel/internal/apperror"
	"github.com/sakif/sageexcel/internal/repository"
)

var _ repository.BlobStore = (*DB)(nil)

// Put stores the bytes in the blobs table, replacing any previous value
// under the same key.
func (db *DB) Put(ctx context.Context, key, contentType string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO blobs (key, content_type, data, created_at) VALUES (?, ?, ?, ?)`,
		key, contentType, data, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: storing blob %s: %w", key, err)
	}
	return nil
}

func (db *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := db.conn.QueryRowContext(ctx, `SELECT data FROM blobs WHERE key = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("blob", key)
		}
		return nil, fmt.Errorf("sqlite: reading blob %s: %w", key, err)
	}
	return data, nil
}

// Delete is idempotent: removing a missing key is not an error.
func (db *DB) Delete(ctx context.Context, key string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite: deleting blob %s: %w", key, err)
	}
	return nil
}
