// internal/api/user_handlers.go
package api

import (
	"net/http"

	"moviemetrics/internal/domain"
	"moviemetrics/internal/service"
)

func (h *HTTPHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.UserRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Users.Create(r.Context(), service.UserInput{
		Email:         req.Email,
		Password:      req.Password,
		AlreadyHashed: req.AlreadyHashed,
		IsAdmin:       req.IsAdmin,
	})
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create user")
		return
	}
	h.respondJSON(w, r, http.StatusCreated, user)
}

func (h *HTTPHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users.GetAll(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve users")
		return
	}
	h.respondJSON(w, r, http.StatusOK, users)
}

func (h *HTTPHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	user, err := h.svc.Users.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve user")
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

// PatchUser меняет email, пароль или роль. Без нового пароля сохраняется прежний хеш.
func (h *HTTPHandler) PatchUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req domain.UserPatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	current, err := h.svc.Users.GetByID(ctx, id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve user")
		return
	}

	in := service.UserInput{
		Email:         current.Email,
		Password:      current.PasswordHash,
		AlreadyHashed: true,
		IsAdmin:       current.IsAdmin(),
	}
	if req.Email != nil {
		in.Email = *req.Email
	}
	if req.Password != nil {
		in.Password = *req.Password
		in.AlreadyHashed = false
	}
	if req.IsAdmin != nil {
		in.IsAdmin = *req.IsAdmin
	}

	user, err := h.svc.Users.Update(ctx, id, in)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update user")
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

func (h *HTTPHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	user, err := h.svc.Users.Delete(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to delete user")
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

// GetMe возвращает профиль текущего пользователя по ID из токена.
func (h *HTTPHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDFromContext(r.Context())
	if !ok {
		h.respondError(w, r, http.StatusUnauthorized, "User ID not found in token")
		return
	}
	user, err := h.svc.Users.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve user profile")
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}
