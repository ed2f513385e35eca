// internal/api/movie_handlers.go
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"moviemetrics/internal/domain"
	"moviemetrics/internal/service"
)

// parseMovieFilter разбирает параметры фильтрации списка фильмов.
// genres можно передать несколько раз или через запятую.
func parseMovieFilter(q url.Values) (service.MovieFilter, error) {
	var f service.MovieFilter
	ints := map[string]**int64{
		"minVoteCount": &f.MinVoteCount,
		"maxVoteCount": &f.MaxVoteCount,
	}
	for key, dst := range ints {
		if v := q.Get(key); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return f, fmt.Errorf("invalid %s: %q", key, v)
			}
			*dst = &n
		}
	}
	floats := map[string]**float64{
		"minVoteAverage": &f.MinVoteAverage,
		"maxVoteAverage": &f.MaxVoteAverage,
		"minPopularity":  &f.MinPopularity,
		"maxPopularity":  &f.MaxPopularity,
	}
	for key, dst := range floats {
		if v := q.Get(key); v != "" {
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return f, fmt.Errorf("invalid %s: %q", key, v)
			}
			*dst = &x
		}
	}
	for _, v := range q["genres"] {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				f.Genres = append(f.Genres, name)
			}
		}
	}
	return f, nil
}

// GetMovies возвращает список фильмов с фильтрацией.
func (h *HTTPHandler) GetMovies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	queryParams := r.URL.Query()
	h.logger.InfoContext(ctx, "GetMovies endpoint hit", slog.String("query", queryParams.Encode()))

	filter, err := parseMovieFilter(queryParams)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	movies, err := h.svc.Movies.List(ctx, filter)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve movies")
		return
	}
	h.respondJSON(w, r, http.StatusOK, movies)
}

func (h *HTTPHandler) GetMovieByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	movie, err := h.svc.Movies.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve movie")
		return
	}
	h.respondJSON(w, r, http.StatusOK, movie)
}

// CompareMovies сравнивает фильмы ?title= и ?other=.
func (h *HTTPHandler) CompareMovies(w http.ResponseWriter, r *http.Request) {
	title, other := r.URL.Query().Get("title"), r.URL.Query().Get("other")
	if title == "" || other == "" {
		h.respondError(w, r, http.StatusBadRequest, "Both title and other query parameters are required")
		return
	}
	cmp, err := h.svc.Movies.Compare(r.Context(), title, other)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to compare movies")
		return
	}
	h.respondJSON(w, r, http.StatusOK, cmp)
}

// CreateMovie создает фильм; жанры по именам создаются при необходимости.
func (h *HTTPHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP CreateMovie request received", slog.String("path", r.URL.Path))

	var req domain.MovieRequest
	if !h.decode(w, r, &req) {
		return
	}
	movie, err := h.svc.Movies.Create(ctx, service.MovieInputFromRequest(req))
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create movie")
		return
	}
	h.respondJSON(w, r, http.StatusCreated, movie)
}

// PatchMovie сливает частичные данные с текущим фильмом и выполняет полную замену.
func (h *HTTPHandler) PatchMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req domain.MoviePatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	current, err := h.svc.Movies.GetByID(ctx, id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to retrieve movie")
		return
	}

	in := service.MovieInput{
		Title:       current.Title,
		Description: current.Description,
		Popularity:  current.Popularity,
		VoteAverage: current.VoteAverage,
		VoteCount:   current.VoteCount,
	}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Popularity != nil {
		in.Popularity = *req.Popularity
	}
	if req.VoteAverage != nil {
		in.VoteAverage = *req.VoteAverage
	}
	if req.VoteCount != nil {
		in.VoteCount = *req.VoteCount
	}
	switch {
	case req.GenreIDs != nil:
		in.GenreIDs = req.GenreIDs
	case req.Genres != nil:
		in.GenreNames = req.Genres
	default:
		in.GenreIDs = current.GenreIDs()
	}

	movie, err := h.svc.Movies.Update(ctx, id, in)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to update movie")
		return
	}
	h.respondJSON(w, r, http.StatusOK, movie)
}

func (h *HTTPHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	movie, err := h.svc.Movies.Delete(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to delete movie")
		return
	}
	h.respondJSON(w, r, http.StatusOK, movie)
}
