package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/sageexcel/internal/apperror"
	"github.com/sakif/sageexcel/internal/auth"
	"github.com/sakif/sageexcel/internal/service"
)

// AuthHandler serves account endpoints.
//
//   - HandleRegister       → create an account
//   - HandleLogin          → check credentials, hand back a token
//   - HandleVerify         → tell the client whether its token is still good
//   - HandleGetUser        → the caller's profile, fresh from the store
//   - HandleChangePassword → replace the caller's password
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
	Message string `json:"message"`
}

type verifyResponse struct {
	Valid   bool          `json:"valid"`
	User    *auth.Profile `json:"user"`
	Message string        `json:"message"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=72"`
}

// currentUserID returns the id RequireAuth put in the context. Routes
// mounted behind RequireAuth always have one.
func currentUserID(r *http.Request) (string, error) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return "", apperror.MissingToken()
	}
	return id, nil
}

// HandleRegister creates a non-admin account.
//
// HTTP: POST /api/auth/register
// BODY: {"name": "...", "email": "...", "password": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if _, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: "User registered"})
}

// HandleLogin exchanges credentials for a bearer token.
//
// HTTP: POST /api/auth/login
// BODY: {"email": "...", "password": "..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, loginResponse{
		Token:   res.Token,
		Name:    res.User.Name,
		IsAdmin: res.User.IsAdmin,
		Message: "successfully logged in",
	})
}

// HandleVerify checks the bearer token without touching the store.
//
// HTTP: POST /api/auth/verify
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r)
	if token == "" {
		writeError(w, h.logger, apperror.MissingToken())
		return
	}

	profile, err := h.svc.Verify(token)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{Valid: true, User: profile, Message: "user is verified"})
}

// HandleGetUser returns the caller with its file and analysis ids.
//
// HTTP: GET /api/auth/getUser
func (h *AuthHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// HandleChangePassword replaces the caller's password after checking the
// old one.
//
// HTTP: PUT /api/auth/changePassword
// BODY: {"oldPassword": "...", "newPassword": "..."}
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Password changed successfully"})
}
