package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/sageexcel/internal/service"
)

type DashboardHandler struct {
	svc    *service.DashboardService
	logger *slog.Logger
}

func NewDashboardHandler(svc *service.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

// HandleDashboard returns the caller's files and analyses, oldest first.
//
// HTTP: GET /api/auth/getData
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	d, err := h.svc.Dashboard(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// HandleListUsers returns every account with its counts. The route is
// guarded by the authorizer.
//
// HTTP: GET /api/auth/getAllUsers
func (h *DashboardHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}
