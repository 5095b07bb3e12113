package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/sageexcel/internal/model"
	"github.com/sakif/sageexcel/internal/repository"
)

// Dashboard is the signed-in user's landing summary.
type Dashboard struct {
	Files    []model.DashboardFile     `json:"files"`
	Analyses []model.DashboardAnalysis `json:"analyses"`
}

// DashboardService serves the dashboard and the admin user list.
type DashboardService struct {
	users    repository.UserRepository
	files    repository.FileRepository
	analyses repository.AnalysisRepository
	logger   *slog.Logger
}

func NewDashboardService(
	users repository.UserRepository,
	files repository.FileRepository,
	analyses repository.AnalysisRepository,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{users: users, files: files, analyses: analyses, logger: logger}
}

// Dashboard lists the user's files and analyses in the order they were
// created.
func (s *DashboardService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, asUserNotFound(err, userID)
	}

	files, err := s.files.ListFilesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/dashboard: listing files: %w", err)
	}
	analyses, err := s.analyses.ListAnalysesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/dashboard: listing analyses: %w", err)
	}

	d := &Dashboard{
		Files:    make([]model.DashboardFile, 0, len(files)),
		Analyses: make([]model.DashboardAnalysis, 0, len(analyses)),
	}
	for _, f := range files {
		d.Files = append(d.Files, model.DashboardFile{ID: f.ID, Filename: f.Filename, Date: f.UploadDate})
	}
	// ListAnalysesByUser is newest first.
	for i := len(analyses) - 1; i >= 0; i-- {
		a := analyses[i]
		d.Analyses = append(d.Analyses, model.DashboardAnalysis{ID: a.ID, ChartTitle: a.ChartTitle, CreatedAt: a.CreatedAt})
	}
	return d, nil
}

// ListUsers returns every user with file and analysis counts. Access is
// decided by the authorizer in front of the route, not here.
func (s *DashboardService) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	users, err := s.users.ListUserSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/dashboard: listing users: %w", err)
	}
	return users, nil
}
