package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/sageexcel/internal/model"
	"github.com/sakif/sageexcel/internal/service"
)

// AnalysisHandler serves saved chart recipes and the charts derived from
// them.
type AnalysisHandler struct {
	analyses *service.AnalysisService
	charts   *service.ChartService
	logger   *slog.Logger
}

func NewAnalysisHandler(analyses *service.AnalysisService, charts *service.ChartService, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{analyses: analyses, charts: charts, logger: logger}
}

// Required fields are checked by the service, which owns the
// "Missing required fields." message.
type saveAnalysisRequest struct {
	ChartTitle     string          `json:"chartTitle" validate:"max=200"`
	ChartType      model.ChartType `json:"chartType"`
	SelectedFields []string        `json:"selectedFields" validate:"max=4"`
	ChartOptions   map[string]any  `json:"chartOptions"`
	Filters        map[string]any  `json:"filters"`
	FileID         string          `json:"fileId"`
	Summary        []string        `json:"summary"`
}

type saveAnalysisResponse struct {
	Message  string          `json:"message"`
	Analysis *model.Analysis `json:"analysis"`
}

type chartRequest struct {
	FileID         string          `json:"fileId"`
	ChartTitle     string          `json:"chartTitle" validate:"max=200"`
	ChartType      model.ChartType `json:"chartType"`
	SelectedFields []string        `json:"selectedFields" validate:"max=4"`
	ChartOptions   map[string]any  `json:"chartOptions"`
}

// HandleSave stores a chart recipe.
//
// HTTP: POST /api/auth/saveAnalysis
func (h *AnalysisHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req saveAnalysisRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	a, err := h.analyses.Save(r.Context(), userID, service.SaveAnalysisInput{
		ChartTitle:     req.ChartTitle,
		ChartType:      req.ChartType,
		SelectedFields: req.SelectedFields,
		ChartOptions:   req.ChartOptions,
		Filters:        req.Filters,
		FileID:         req.FileID,
		Summary:        req.Summary,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, saveAnalysisResponse{Message: "Analysis saved successfully", Analysis: a})
}

// HandleList returns the caller's analyses, newest first.
//
// HTTP: GET /api/auth/getAnalysis
func (h *AnalysisHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	list, err := h.analyses.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"analysis": list})
}

// HTTP: GET /api/auth/analysis/{id}
func (h *AnalysisHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	a, err := h.analyses.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// HTTP: DELETE /api/auth/analysis/{id}
func (h *AnalysisHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.analyses.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Analysis deleted successfully"})
}

// HandleChart rebuilds the chart of a saved analysis from its file.
//
// HTTP: GET /api/auth/analysis/{id}/chart
// Accept: application/msgpack switches the encoding.
func (h *AnalysisHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	env, err := h.charts.ForAnalysis(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeNegotiated(w, r, http.StatusOK, env)
}

// HandlePreviewChart builds a chart from an unsaved recipe.
//
// HTTP: POST /api/auth/chart
func (h *AnalysisHandler) HandlePreviewChart(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req chartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	env, err := h.charts.Preview(r.Context(), userID, service.ChartInput{
		FileID:         req.FileID,
		ChartTitle:     req.ChartTitle,
		ChartType:      req.ChartType,
		SelectedFields: req.SelectedFields,
		ChartOptions:   req.ChartOptions,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeNegotiated(w, r, http.StatusOK, env)
}
