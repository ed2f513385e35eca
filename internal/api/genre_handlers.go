// internal/api/genre_handlers.go
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"moviemetrics/internal/domain"
)

func (h *HTTPHandler) GetGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.svc.Genres.GetAll(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve genres")
		return
	}
	h.respondJSON(w, r, http.StatusOK, genres)
}

func (h *HTTPHandler) GetGenreByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	genre, err := h.svc.Genres.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve genre")
		return
	}
	h.respondJSON(w, r, http.StatusOK, genre)
}

func (h *HTTPHandler) GetGenreByName(w http.ResponseWriter, r *http.Request) {
	genre, err := h.svc.Genres.GetByName(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve genre")
		return
	}
	h.respondJSON(w, r, http.StatusOK, genre)
}

// GetGenreMovies фильмы с жанром {id}.
func (h *HTTPHandler) GetGenreMovies(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	movies, err := h.svc.Genres.Movies(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve movies")
		return
	}
	h.respondJSON(w, r, http.StatusOK, movies)
}

func (h *HTTPHandler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	var req domain.GenreRequest
	if !h.decode(w, r, &req) {
		return
	}
	genre, err := h.svc.Genres.Create(r.Context(), req.Name)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create genre")
		return
	}
	h.respondJSON(w, r, http.StatusCreated, genre)
}

func (h *HTTPHandler) UpdateGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req domain.GenreRequest
	if !h.decode(w, r, &req) {
		return
	}
	genre, err := h.svc.Genres.Update(r.Context(), id, req.Name)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update genre")
		return
	}
	h.respondJSON(w, r, http.StatusOK, genre)
}

func (h *HTTPHandler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	genre, err := h.svc.Genres.Delete(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to delete genre")
		return
	}
	h.respondJSON(w, r, http.StatusOK, genre)
}
