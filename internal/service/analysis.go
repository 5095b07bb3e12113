package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/sageexcel/internal/apperror"
	"github.com/sakif/sageexcel/internal/model"
	"github.com/sakif/sageexcel/internal/repository"
)

// DefaultChartTitle is used when an analysis is saved without a title.
const DefaultChartTitle = "Untitled Chart"

type AnalysisService struct {
	analyses repository.AnalysisRepository
	files    repository.FileRepository
	logger   *slog.Logger
}

func NewAnalysisService(analyses repository.AnalysisRepository, files repository.FileRepository, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{analyses: analyses, files: files, logger: logger}
}

type SaveAnalysisInput struct {
	ChartTitle     string
	ChartType      model.ChartType
	SelectedFields []string
	ChartOptions   map[string]any
	Filters        map[string]any
	FileID         string
	Summary        []string
}

// Save stores a chart recipe built on one of the caller's files.
func (s *AnalysisService) Save(ctx context.Context, userID string, in SaveAnalysisInput) (*model.Analysis, error) {
	if in.ChartType == "" || len(in.SelectedFields) == 0 || strings.TrimSpace(in.FileID) == "" {
		return nil, apperror.MissingField("", "Missing required fields.")
	}
	if !in.ChartType.Valid() {
		return nil, apperror.ValidationFailed("chartType", fmt.Sprintf("unknown chart type %q", in.ChartType))
	}

	f, err := s.files.GetFile(ctx, in.FileID)
	if err != nil {
		return nil, err
	}
	if f.UploadedBy != userID {
		return nil, notOwned("file", in.FileID)
	}

	title := strings.TrimSpace(in.ChartTitle)
	if title == "" {
		title = DefaultChartTitle
	}

	a := &model.Analysis{
		UserID:         userID,
		FileID:         in.FileID,
		ChartTitle:     title,
		ChartType:      in.ChartType,
		SelectedFields: in.SelectedFields,
		ChartOptions:   in.ChartOptions,
		Filters:        in.Filters,
		Summary:        in.Summary,
	}
	if err := s.analyses.CreateAnalysis(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("analysis saved",
		slog.String("analysisID", a.ID),
		slog.String("userID", userID),
		slog.String("fileID", a.FileID),
		slog.String("chartType", string(a.ChartType)),
	)
	return a, nil
}

// List returns the caller's analyses, newest first.
func (s *AnalysisService) List(ctx context.Context, userID string) ([]model.Analysis, error) {
	list, err := s.analyses.ListAnalysesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/analysis: listing: %w", err)
	}
	return list, nil
}

func (s *AnalysisService) Get(ctx context.Context, userID, id string) (*model.Analysis, error) {
	a, err := s.analyses.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, notOwned("analysis", id)
	}
	return a, nil
}

// Delete removes an analysis; the user and file back-references follow.
func (s *AnalysisService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.analyses.DeleteAnalysis(ctx, id); err != nil {
		return err
	}
	s.logger.Info("analysis deleted", slog.String("analysisID", id), slog.String("userID", userID))
	return nil
}
