package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"moviemetrics/internal/blob"
	"moviemetrics/internal/domain"
	"moviemetrics/internal/store"
	"moviemetrics/pkg/auth"
)

type services struct {
	store  store.Store
	genres *GenreService
	movies *MovieService
	users  *UserService
	auth   *AuthService
	data   *DataService
	blobs  *blob.Memory
}

func newServicesWith(t *testing.T, st store.Store) *services {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hasher := &auth.BcryptHasher{Cost: bcrypt.MinCost}
	tokens, err := auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour, logger)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	blobs := blob.NewMemory()
	users := NewUserService(st, hasher, logger)
	genres := NewGenreService(st, logger)
	movies := NewMovieService(st, logger)
	return &services{
		store:  st,
		genres: genres,
		movies: movies,
		users:  users,
		auth:   NewAuthService(users, hasher, tokens, logger),
		data:   NewDataService(genres, movies, users, blobs, validator.New(), logger),
		blobs:  blobs,
	}
}

func newServices(t *testing.T) *services {
	t.Helper()
	return newServicesWith(t, store.NewMemoryStore(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func newSQLiteServices(t *testing.T) *services {
	t.Helper()
	st, err := store.NewSQLStore(context.Background(), store.DriverSQLite, ":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewSQLStore: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return newServicesWith(t, st)
}

func mustGenre(t *testing.T, s *services, name string) *domain.Genre {
	t.Helper()
	g, err := s.genres.Create(context.Background(), name)
	if err != nil {
		t.Fatalf("create genre %q: %v", name, err)
	}
	return g
}

func mustMovie(t *testing.T, s *services, in MovieInput) *domain.Movie {
	t.Helper()
	if in.Description == "" {
		in.Description = "A movie about " + in.Title
	}
	m, err := s.movies.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create movie %q: %v", in.Title, err)
	}
	return m
}

func genreNames(genres []*domain.Genre) map[string]bool {
	out := make(map[string]bool, len(genres))
	for _, g := range genres {
		out[g.Name] = true
	}
	return out
}
