// internal/api/auth_handlers.go
package api

import (
	"log/slog"
	"net/http"

	"moviemetrics/internal/domain"
)

// RegisterUser регистрирует пользователя с ролью USER и сразу выдает токен.
func (h *HTTPHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP RegisterUser request received", slog.String("path", r.URL.Path))

	var req domain.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.svc.Auth.Register(ctx, req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to register user")
		return
	}
	resp, err := h.svc.Auth.Issue(ctx, user)
	if err != nil {
		h.respondServiceError(w, r, err, "Error generating token")
		return
	}
	h.logger.InfoContext(ctx, "User registered successfully", slog.Int64("userID", user.ID))
	h.respondJSON(w, r, http.StatusCreated, resp)
}

// LoginUser проверяет email и пароль и возвращает JWT.
func (h *HTTPHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP LoginUser request received", slog.String("path", r.URL.Path))

	var req domain.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.svc.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, r, err, "Login failed")
		return
	}
	h.respondJSON(w, r, http.StatusOK, resp)
}
