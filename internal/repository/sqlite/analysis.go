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

var _ repository.AnalysisRepository = (*DB)(nil)

// CreateAnalysis inserts a saved chart recipe.
//
// The owner and source file must exist: the existence check and the insert
// run in one transaction so a concurrent file delete cannot leave the new
// analysis pointing at nothing.
func (db *DB) CreateAnalysis(ctx context.Context, a *model.Analysis) error {
	a.ID = xid.New().String()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	normalizeAnalysis(a)

	fields, err := json.Marshal(a.SelectedFields)
	if err != nil {
		return fmt.Errorf("sqlite: encoding selected fields: %w", err)
	}
	options, err := json.Marshal(a.ChartOptions)
	if err != nil {
		return fmt.Errorf("sqlite: encoding chart options: %w", err)
	}
	filters, err := json.Marshal(a.Filters)
	if err != nil {
		return fmt.Errorf("sqlite: encoding filters: %w", err)
	}
	summary, err := json.Marshal(a.Summary)
	if err != nil {
		return fmt.Errorf("sqlite: encoding summary: %w", err)
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM files WHERE id = ?`, a.FileID).Scan(&exists)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.NotFound("file", a.FileID)
			}
			return fmt.Errorf("sqlite: checking file %s: %w", a.FileID, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO analyses (id, user_id, file_id, chart_title, chart_type,
			                       selected_fields, chart_options, filters, summary, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID,
			a.UserID,
			a.FileID,
			a.ChartTitle,
			string(a.ChartType),
			string(fields),
			string(options),
			string(filters),
			string(summary),
			a.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting analysis: %w", err)
		}
		return nil
	})
}

func (db *DB) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	a, err := scanAnalysis(db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, file_id, chart_title, chart_type,
		        selected_fields, chart_options, filters, summary, created_at
		 FROM analyses WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("analysis", id)
		}
		return nil, fmt.Errorf("sqlite: getting analysis %s: %w", id, err)
	}
	return a, nil
}

// ListAnalysesByUser returns the user's analyses, newest first.
func (db *DB) ListAnalysesByUser(ctx context.Context, userID string) ([]model.Analysis, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, file_id, chart_title, chart_type,
		        selected_fields, chart_options, filters, summary, created_at
		 FROM analyses WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing analyses of user %s: %w", userID, err)
	}
	defer rows.Close()

	list := []model.Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning analysis: %w", err)
		}
		list = append(list, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating analyses: %w", err)
	}
	return list, nil
}

// DeleteAnalysis removes one analysis. The owner's and file's back-reference
// lists are derived from this row, so deleting it prunes both.
func (db *DB) DeleteAnalysis(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting analysis %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("analysis", id)
	}
	return nil
}

func scanAnalysis(s rowScanner) (*model.Analysis, error) {
	var (
		a                                 model.Analysis
		chartType                         string
		fields, options, filters, summary string
	)
	err := s.Scan(
		&a.ID,
		&a.UserID,
		&a.FileID,
		&a.ChartTitle,
		&chartType,
		&fields,
		&options,
		&filters,
		&summary,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.ChartType = model.ChartType(chartType)

	if err := json.Unmarshal([]byte(fields), &a.SelectedFields); err != nil {
		return nil, fmt.Errorf("decoding selected fields of %s: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(options), &a.ChartOptions); err != nil {
		return nil, fmt.Errorf("decoding chart options of %s: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(filters), &a.Filters); err != nil {
		return nil, fmt.Errorf("decoding filters of %s: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(summary), &a.Summary); err != nil {
		return nil, fmt.Errorf("decoding summary of %s: %w", a.ID, err)
	}
	normalizeAnalysis(&a)
	return &a, nil
}

// normalizeAnalysis replaces nil collections with empty ones so they
// serialize as [] / {} and not null.
func normalizeAnalysis(a *model.Analysis) {
	if a.SelectedFields == nil {
		a.SelectedFields = []string{}
	}
	if a.ChartOptions == nil {
		a.ChartOptions = map[string]any{}
	}
	if a.Filters == nil {
		a.Filters = map[string]any{}
	}
	if a.Summary == nil {
		a.Summary = []string{}
	}
}
