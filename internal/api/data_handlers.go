// internal/api/data_handlers.go
package api

import (
	"log/slog"
	"net/http"

	"moviemetrics/internal/domain"
)

// SaveData снимает дамп базы и сохраняет его в архив.
func (h *HTTPHandler) SaveData(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Data.Save(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to save data dump")
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]any{"filename": info.Key, "sizeBytes": info.Size})
}

// ExportData отдает дамп базы прямо в ответе, без сохранения в архив.
func (h *HTTPHandler) ExportData(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Data.Dump(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to export data")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to write data dump", slog.String("error", err.Error()))
	}
}

// LoadData загружает сохраненный дамп по имени файла.
func (h *HTTPHandler) LoadData(w http.ResponseWriter, r *http.Request) {
	var req domain.FilenameRequest
	if !h.decode(w, r, &req) {
		return
	}
	report, err := h.svc.Data.Restore(r.Context(), req.Filename)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to load data dump")
		return
	}
	h.respondJSON(w, r, http.StatusOK, report)
}

// ImportData загружает дамп, переданный телом запроса.
func (h *HTTPHandler) ImportData(w http.ResponseWriter, r *http.Request) {
	data, ok := h.readBody(w, r)
	if !ok {
		return
	}
	report, err := h.svc.Data.Load(r.Context(), data)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to import data")
		return
	}
	h.respondJSON(w, r, http.StatusOK, report)
}

func (h *HTTPHandler) ListDumps(w http.ResponseWriter, r *http.Request) {
	dumps, err := h.svc.Data.ListDumps(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to list data dumps")
		return
	}
	h.respondJSON(w, r, http.StatusOK, dumps)
}
