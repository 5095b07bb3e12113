package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/sageexcel/internal/service"
)

// SummaryHandler asks the AI provider to describe chart data.
type SummaryHandler struct {
	svc    *service.SummaryService
	logger *slog.Logger
}

func NewSummaryHandler(svc *service.SummaryService, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{svc: svc, logger: logger}
}

type summaryRequest struct {
	ChartTitle string           `json:"chartTitle" validate:"max=200"`
	ChartType  string           `json:"chartType"`
	Headers    []string         `json:"headers"`
	Data       []map[string]any `json:"data"`
	FileID     string           `json:"fileId"`
}

type summaryResponse struct {
	Summary []string `json:"summary"`
}

// HandleSummary returns a few lines of insight about the posted rows, or
// about a stored file when no rows are posted.
//
// HTTP: POST /api/auth/summary
func (h *SummaryHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req summaryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("summary requested",
		slog.String("userID", userID),
		slog.Int("rows", len(req.Data)),
	)

	lines, err := h.svc.Summarize(r.Context(), userID, service.SummaryInput{
		ChartTitle: req.ChartTitle,
		ChartType:  req.ChartType,
		Headers:    req.Headers,
		Data:       req.Data,
		FileID:     req.FileID,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{Summary: lines})
}
