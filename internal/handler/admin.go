package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/downloadzone/internal/service"
)

type adminHandler struct {
	adminAuthService *service.AdminAuthService
}

func NewAdminHandler(adminAuthService *service.AdminAuthService) *adminHandler {
	return &adminHandler{
		adminAuthService: adminAuthService,
	}
}

type adminInitRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type updateEmailRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"current_password"`
}

func (h *adminHandler) Init(w http.ResponseWriter, r *http.Request) {
	var req adminInitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.adminAuthService.Init(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *adminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.adminAuthService.Login(r.Context(), req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeDetail(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adminLoginResponse{Success: true, Message: "Access granted", Token: token})
}

func (h *adminHandler) RequestPasswordChange(w http.ResponseWriter, r *http.Request) {
	var req passwordChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	err := h.adminAuthService.RequestPasswordChange(r.Context(), req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, "Invalid current password")
	case errors.Is(err, service.ErrEmailSendFailed):
		writeDetail(w, http.StatusInternalServerError, "Failed to send confirmation email")
	case err != nil:
		writeError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

func (h *adminHandler) ConfirmPasswordChange(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.adminAuthService.ConfirmPasswordChange(r.Context(), req.Token); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *adminHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	err := h.adminAuthService.ForgotPassword(r.Context(), req.Email)
	if errors.Is(err, service.ErrEmailSendFailed) {
		// Don't reveal delivery problems to an unauthenticated caller
		slog.Warn("admin forgot password email failed", "error", err)
		err = nil
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *adminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.adminAuthService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *adminHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	var req updateEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	email, err := h.adminAuthService.UpdateEmail(r.Context(), req.Email, req.CurrentPassword)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeDetail(w, http.StatusUnauthorized, "Invalid current password")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "email": email})
}
