// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"moviemetrics/internal/domain"
	"moviemetrics/internal/service"
	"moviemetrics/pkg/auth"
)

// maxBodyBytes ограничение тела запроса; дамп базы может быть большим.
const maxBodyBytes = 32 << 20

// Services сервисный слой, которым пользуются обработчики.
type Services struct {
	Genres *service.GenreService
	Movies *service.MovieService
	Users  *service.UserService
	Auth   *service.AuthService
	Data   *service.DataService
}

// HTTPHandler содержит зависимости для HTTP обработчиков.
type HTTPHandler struct {
	svc          Services
	logger       *slog.Logger
	validator    *validator.Validate
	tokenManager auth.TokenManager
}

func NewHTTPHandler(svc Services, l *slog.Logger, v *validator.Validate, tm auth.TokenManager) *HTTPHandler {
	return &HTTPHandler{
		svc:          svc,
		logger:       l,
		validator:    v,
		tokenManager: tm,
	}
}

// --- Вспомогательные функции ---

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, map[string]string{"error": message})
}

// statusFor переводит класс бизнес-ошибки в HTTP статус.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError отдает бизнес-ошибку с ее сообщением, а внутреннюю - без подробностей.
func (h *HTTPHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), fallback, slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		h.respondError(w, r, status, fallback)
		return
	}
	var de *domain.Error
	if errors.As(err, &de) {
		h.respondError(w, r, status, de.Msg)
		return
	}
	h.respondError(w, r, status, err.Error())
}

// decode читает JSON тело в dst и проверяет его валидатором. При ошибке ответ уже отправлен.
func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	ctx := r.Context()
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode request body", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	if err := h.validator.StructCtx(ctx, dst); err != nil {
		h.logger.WarnContext(ctx, "Request validation failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

// readBody читает тело запроса целиком, не разбирая его.
func (h *HTTPHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	defer r.Body.Close()
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to read request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return nil, false
	}
	return data, true
}

// pathID достает числовой {id} из пути.
func (h *HTTPHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid id: %q", raw))
		return 0, false
	}
	return id, true
}

// Healthz простая проверка живости процесса.
func (h *HTTPHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
