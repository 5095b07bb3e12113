package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sakif/sageexcel/internal/apperror"
	"github.com/sakif/sageexcel/internal/summary"
)

// SummaryService asks the configured provider for insight lines.
type SummaryService struct {
	provider summary.Summarizer
	files    *FileService
	logger   *slog.Logger
}

// NewSummaryService accepts a nil provider; Summarize then reports the
// feature as unavailable.
func NewSummaryService(provider summary.Summarizer, files *FileService, logger *slog.Logger) *SummaryService {
	return &SummaryService{provider: provider, files: files, logger: logger}
}

// SummaryInput carries chart data inline, or a FileID whose rows are used
// when Data is empty. Inline cells may be strings, numbers, booleans or null.
type SummaryInput struct {
	ChartTitle string
	ChartType  string
	Headers    []string
	Data       []map[string]any
	FileID     string
}

func (s *SummaryService) Summarize(ctx context.Context, userID string, in SummaryInput) ([]string, error) {
	if s.provider == nil {
		return nil, apperror.Unavailable("AI summary is not configured")
	}

	req := summary.Request{
		ChartTitle: in.ChartTitle,
		ChartType:  in.ChartType,
		Headers:    in.Headers,
		Rows:       textRows(in.Data),
	}
	if len(req.Rows) == 0 {
		if in.FileID == "" {
			return nil, apperror.MissingField("data", "data or fileId is required")
		}
		decoded, err := s.files.Rows(ctx, userID, in.FileID)
		if err != nil {
			return nil, err
		}
		if len(req.Headers) == 0 {
			req.Headers = decoded.Headers
		}
		req.Rows = make([]map[string]string, len(decoded.Rows))
		for i, row := range decoded.Rows {
			req.Rows[i] = row
		}
	}

	res, err := s.provider.Summarize(ctx, req)
	if err != nil {
		if errors.Is(err, apperror.ErrUnavailable) {
			return nil, err
		}
		s.logger.Error("summary provider failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable("AI summary failed, try again later")
	}

	s.logger.Info("summary generated",
		slog.String("userID", userID),
		slog.Int("lines", len(res.Lines)),
		slog.Duration("duration", res.Duration),
	)
	return res.Lines, nil
}

func textRows(data []map[string]any) []map[string]string {
	if len(data) == 0 {
		return nil
	}
	rows := make([]map[string]string, len(data))
	for i, in := range data {
		row := make(map[string]string, len(in))
		for k, v := range in {
			row[k] = cellText(v)
		}
		rows[i] = row
	}
	return rows
}

// cellText renders a decoded JSON value the way it would read in a sheet.
func cellText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
