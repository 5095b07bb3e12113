package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/xid"

	"github.com/sakif/sageexcel/internal/apperror"
	"github.com/sakif/sageexcel/internal/model"
	"github.com/sakif/sageexcel/internal/repository"
)

var _ repository.FileRepository = (*DB)(nil)

// CreateFile inserts file metadata. An ID already set by the caller is kept,
// since the blob may have been stored under it first.
func (db *DB) CreateFile(ctx context.Context, f *model.File) error {
	if f.ID == "" {
		f.ID = xid.New().String()
	}
	if f.UploadDate.IsZero() {
		f.UploadDate = time.Now()
	}
	if f.Headers == nil {
		f.Headers = []string{}
	}
	f.Analyses = []string{}

	headers, err := json.Marshal(f.Headers)
	if err != nil {
		return fmt.Errorf("sqlite: encoding headers: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO files (id, user_id, filename, content_type, size, headers, upload_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID,
		f.UploadedBy,
		f.Filename,
		f.ContentType,
		f.Size,
		string(headers),
		f.UploadDate,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting file %s: %w", f.ID, err)
	}
	return nil
}

// GetFile returns metadata and the ids of analyses built on the file.
func (db *DB) GetFile(ctx context.Context, id string) (*model.File, error) {
	f, err := scanFile(db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, filename, content_type, size, headers, upload_date
		 FROM files WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("file", id)
		}
		return nil, fmt.Errorf("sqlite: getting file %s: %w", id, err)
	}

	f.Analyses, err = db.idList(ctx,
		`SELECT id FROM analyses WHERE file_id = ? ORDER BY created_at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing analyses of file %s: %w", id, err)
	}
	return f, nil
}

// ListFilesByUser returns the user's files, oldest first, without bytes.
// Each file carries the ids of the analyses built on it.
func (db *DB) ListFilesByUser(ctx context.Context, userID string) ([]model.File, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, filename, content_type, size, headers, upload_date
		 FROM files WHERE user_id = ? ORDER BY upload_date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing files of user %s: %w", userID, err)
	}
	defer rows.Close()

	files := []model.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning file: %w", err)
		}
		files = append(files, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating files: %w", err)
	}

	byFile, err := db.analysisIDsByFile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing analyses of user %s: %w", userID, err)
	}
	for i := range files {
		if ids, ok := byFile[files[i].ID]; ok {
			files[i].Analyses = ids
		} else {
			files[i].Analyses = []string{}
		}
	}
	return files, nil
}

func (db *DB) analysisIDsByFile(ctx context.Context, userID string) (map[string][]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT file_id, id FROM analyses WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byFile := map[string][]string{}
	for rows.Next() {
		var fileID, id string
		if err := rows.Scan(&fileID, &id); err != nil {
			return nil, err
		}
		byFile[fileID] = append(byFile[fileID], id)
	}
	return byFile, rows.Err()
}

// DeleteFile removes the file and, in the same transaction, every analysis
// that references it. Nothing that points at a deleted file survives.
func (db *DB) DeleteFile(ctx context.Context, id string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM analyses WHERE file_id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting analyses of file %s: %w", id, err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting file %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if n == 0 {
			return apperror.NotFound("file", id)
		}
		return nil
	})
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(s rowScanner) (*model.File, error) {
	var (
		f       model.File
		headers string
	)
	err := s.Scan(
		&f.ID,
		&f.UploadedBy,
		&f.Filename,
		&f.ContentType,
		&f.Size,
		&headers,
		&f.UploadDate,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(headers), &f.Headers); err != nil {
		return nil, fmt.Errorf("decoding headers of file %s: %w", f.ID, err)
	}
	if f.Headers == nil {
		f.Headers = []string{}
	}
	return &f, nil
}

// withTx runs fn inside a transaction, committing on nil and rolling back
// on error.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}
