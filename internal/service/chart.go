package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/sageexcel/internal/apperror"
	"github.com/sakif/sageexcel/internal/chart"
	"github.com/sakif/sageexcel/internal/model"
)

// ChartService re-derives charts from stored files. Nothing it produces is
// persisted.
type ChartService struct {
	files    *FileService
	analyses *AnalysisService
	logger   *slog.Logger
}

func NewChartService(files *FileService, analyses *AnalysisService, logger *slog.Logger) *ChartService {
	return &ChartService{files: files, analyses: analyses, logger: logger}
}

// ChartInput is an unsaved recipe applied to one of the caller's files.
type ChartInput struct {
	FileID         string
	ChartTitle     string
	ChartType      model.ChartType
	SelectedFields []string
	ChartOptions   map[string]any
}

// ForAnalysis rebuilds the chart of a saved analysis.
func (s *ChartService) ForAnalysis(ctx context.Context, userID, analysisID string) (*chart.Envelope, error) {
	a, err := s.analyses.Get(ctx, userID, analysisID)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, userID, a.FileID, a.ChartType, chart.RecipeFor(a))
}

// Preview builds a chart without saving anything.
func (s *ChartService) Preview(ctx context.Context, userID string, in ChartInput) (*chart.Envelope, error) {
	if strings.TrimSpace(in.FileID) == "" || in.ChartType == "" || len(in.SelectedFields) == 0 {
		return nil, apperror.MissingField("", "Missing required fields.")
	}
	if !in.ChartType.Valid() {
		return nil, apperror.ValidationFailed("chartType", fmt.Sprintf("unknown chart type %q", in.ChartType))
	}
	r := chart.ResolveRecipe(in.ChartTitle, in.SelectedFields, in.ChartOptions)
	return s.build(ctx, userID, in.FileID, in.ChartType, r)
}

func (s *ChartService) build(ctx context.Context, userID, fileID string, ct model.ChartType, r chart.Recipe) (*chart.Envelope, error) {
	decoded, err := s.files.Rows(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}

	env, err := chart.Wrap(decoded.Rows, r, ct)
	if err != nil {
		return nil, apperror.ValidationFailed("chartType", err.Error())
	}

	s.logger.Debug("chart built",
		slog.String("fileID", fileID),
		slog.String("chartType", string(ct)),
		slog.Int("rows", len(decoded.Rows)),
	)
	return env, nil
}
