// internal/api/router.go
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"moviemetrics/internal/domain"
)

// RouterOptions необязательные middleware роутера. Nil поле отключает соответствующую функцию.
type RouterOptions struct {
	Metrics     *Metrics
	RateLimiter *RateLimiter
}

// NewHTTPRouter создает и настраивает HTTP маршрутизатор каталога.
func NewHTTPRouter(h *HTTPHandler, opts RouterOptions) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestID)
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
		router.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)
	}
	router.Use(h.AccessLog)
	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Middleware)
	}

	router.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)

	// Публичные эндпоинты (не требуют аутентификации)
	authRouter := router.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", h.RegisterUser).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", h.LoginUser).Methods(http.MethodPost)

	// Каталог доступен любому аутентифицированному пользователю, изменение и удаление только ADMIN
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(h.AuthMiddleware)
	apiRouter.HandleFunc("/me", h.GetMe).Methods(http.MethodGet)

	apiRouter.HandleFunc("/genres", h.GetGenres).Methods(http.MethodGet)
	apiRouter.HandleFunc("/genres", h.CreateGenre).Methods(http.MethodPost)
	apiRouter.HandleFunc("/genres/name/{name}", h.GetGenreByName).Methods(http.MethodGet)
	apiRouter.HandleFunc("/genres/{id:[0-9]+}", h.GetGenreByID).Methods(http.MethodGet)
	apiRouter.HandleFunc("/genres/{id:[0-9]+}/movies", h.GetGenreMovies).Methods(http.MethodGet)

	apiRouter.HandleFunc("/movies", h.GetMovies).Methods(http.MethodGet)
	apiRouter.HandleFunc("/movies", h.CreateMovie).Methods(http.MethodPost)
	apiRouter.HandleFunc("/movies/compare", h.CompareMovies).Methods(http.MethodGet)
	apiRouter.HandleFunc("/movies/{id:[0-9]+}", h.GetMovieByID).Methods(http.MethodGet)

	adminOnly := h.RequireRole(domain.RoleAdmin)

	apiAdmin := apiRouter.NewRoute().Subrouter()
	apiAdmin.Use(adminOnly)
	apiAdmin.HandleFunc("/genres/{id:[0-9]+}", h.UpdateGenre).Methods(http.MethodPatch)
	apiAdmin.HandleFunc("/genres/{id:[0-9]+}", h.DeleteGenre).Methods(http.MethodDelete)
	apiAdmin.HandleFunc("/movies/{id:[0-9]+}", h.PatchMovie).Methods(http.MethodPatch)
	apiAdmin.HandleFunc("/movies/{id:[0-9]+}", h.DeleteMovie).Methods(http.MethodDelete)

	usersRouter := router.PathPrefix("/users").Subrouter()
	usersRouter.Use(h.AuthMiddleware, adminOnly)
	usersRouter.HandleFunc("", h.GetUsers).Methods(http.MethodGet)
	usersRouter.HandleFunc("", h.CreateUser).Methods(http.MethodPost)
	usersRouter.HandleFunc("/{id:[0-9]+}", h.GetUserByID).Methods(http.MethodGet)
	usersRouter.HandleFunc("/{id:[0-9]+}", h.PatchUser).Methods(http.MethodPatch)
	usersRouter.HandleFunc("/{id:[0-9]+}", h.DeleteUser).Methods(http.MethodDelete)

	dataRouter := router.PathPrefix("/data").Subrouter()
	dataRouter.Use(h.AuthMiddleware, adminOnly)
	dataRouter.HandleFunc("/save", h.SaveData).Methods(http.MethodGet)
	dataRouter.HandleFunc("/export", h.ExportData).Methods(http.MethodGet)
	dataRouter.HandleFunc("/load", h.LoadData).Methods(http.MethodPost)
	dataRouter.HandleFunc("/import", h.ImportData).Methods(http.MethodPost)
	dataRouter.HandleFunc("/dumps", h.ListDumps).Methods(http.MethodGet)

	return router
}
