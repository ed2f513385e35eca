// internal/store/memory.go
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"moviemetrics/internal/domain"
)

// memMovie фильм в памяти: жанры хранятся идентификаторами и подтягиваются при чтении,
// чтобы переименование жанра сразу было видно в фильмах.
type memMovie struct {
	movie    domain.Movie
	genreIDs []int64
}

type memState struct {
	genres      map[int64]domain.Genre
	movies      map[int64]memMovie
	users       map[int64]domain.User
	nextGenreID int64
	nextMovieID int64
	nextUserID  int64
}

func newMemState() *memState {
	return &memState{
		genres: make(map[int64]domain.Genre),
		movies: make(map[int64]memMovie),
		users:  make(map[int64]domain.User),
	}
}

func (s *memState) clone() *memState {
	c := &memState{
		genres:      make(map[int64]domain.Genre, len(s.genres)),
		movies:      make(map[int64]memMovie, len(s.movies)),
		users:       make(map[int64]domain.User, len(s.users)),
		nextGenreID: s.nextGenreID,
		nextMovieID: s.nextMovieID,
		nextUserID:  s.nextUserID,
	}
	for id, g := range s.genres {
		c.genres[id] = g
	}
	for id, m := range s.movies {
		c.movies[id] = memMovie{movie: m.movie, genreIDs: append([]int64(nil), m.genreIDs...)}
	}
	for id, u := range s.users {
		c.users[id] = u
	}
	return c
}

// MemoryStore реализует Store в памяти. Используется для разработки и тестов.
type MemoryStore struct {
	mu     sync.RWMutex
	state  *memState
	logger *slog.Logger
}

// NewMemoryStore создает пустое хранилище в памяти.
func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	return &MemoryStore{state: newMemState(), logger: logger}
}

func (m *MemoryStore) Genres() GenreRepository { return &memGenres{memView{store: m}} }
func (m *MemoryStore) Movies() MovieRepository { return &memMovies{memView{store: m}} }
func (m *MemoryStore) Users() UserRepository   { return &memUsers{memView{store: m}} }

func (m *MemoryStore) Close() error { return nil }

// RunInTx выполняет fn над копией состояния и подменяет состояние только при успехе.
// Копируется все состояние целиком: цена транзакции растет с размером каталога,
// и пакетная загрузка по одной транзакции на запись квадратична.
func (m *MemoryStore) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{state: m.state.clone()}
	if err := fn(tx); err != nil {
		m.logger.DebugContext(ctx, "Memory transaction rolled back", slog.String("error", err.Error()))
		return err
	}
	m.state = tx.state
	return nil
}

type memTx struct {
	state *memState
}

func (t *memTx) Genres() GenreRepository { return &memGenres{memView{tx: t.state}} }
func (t *memTx) Movies() MovieRepository { return &memMovies{memView{tx: t.state}} }
func (t *memTx) Users() UserRepository   { return &memUsers{memView{tx: t.state}} }

// memView дает доступ к состоянию: внутри транзакции напрямую, иначе под блокировкой.
type memView struct {
	store *MemoryStore
	tx    *memState
}

func (v memView) read(fn func(st *memState) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.state)
}

func (v memView) write(fn func(st *memState) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.state)
}

// --- Жанры ---

type memGenres struct{ memView }

func (r *memGenres) Create(_ context.Context, genre *domain.Genre) error {
	return r.write(func(st *memState) error {
		for _, g := range st.genres {
			if g.Name == genre.Name {
				return ErrAlreadyExists
			}
		}
		st.nextGenreID++
		genre.ID = st.nextGenreID
		st.genres[genre.ID] = *genre
		return nil
	})
}

func (r *memGenres) GetByID(_ context.Context, id int64) (*domain.Genre, error) {
	var out *domain.Genre
	err := r.read(func(st *memState) error {
		g, ok := st.genres[id]
		if !ok {
			return ErrNotFound
		}
		out = &g
		return nil
	})
	return out, err
}

func (r *memGenres) GetByKey(_ context.Context, name string) (*domain.Genre, error) {
	var out *domain.Genre
	err := r.read(func(st *memState) error {
		for _, g := range st.genres {
			if g.Name == name {
				genre := g
				out = &genre
				return nil
			}
		}
		return ErrNotFound
	})
	return out, err
}

func (r *memGenres) List(_ context.Context) ([]*domain.Genre, error) {
	var out []*domain.Genre
	err := r.read(func(st *memState) error {
		out = make([]*domain.Genre, 0, len(st.genres))
		for _, g := range st.genres {
			genre := g
			out = append(out, &genre)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *memGenres) Update(_ context.Context, genre *domain.Genre) error {
	return r.write(func(st *memState) error {
		if _, ok := st.genres[genre.ID]; !ok {
			return ErrNotFound
		}
		for _, g := range st.genres {
			if g.ID != genre.ID && g.Name == genre.Name {
				return ErrAlreadyExists
			}
		}
		st.genres[genre.ID] = *genre
		return nil
	})
}

func (r *memGenres) Delete(_ context.Context, id int64) error {
	return r.write(func(st *memState) error {
		if _, ok := st.genres[id]; !ok {
			return ErrNotFound
		}
		delete(st.genres, id)
		detachGenre(st, id)
		return nil
	})
}

// --- Фильмы ---

type memMovies struct{ memView }

// hydrate собирает фильм с актуальными записями жанров.
func hydrate(st *memState, mm memMovie) *domain.Movie {
	movie := mm.movie
	movie.Genres = make([]domain.Genre, 0, len(mm.genreIDs))
	for _, gid := range mm.genreIDs {
		if g, ok := st.genres[gid]; ok {
			movie.Genres = append(movie.Genres, g)
		}
	}
	return &movie
}

// genreIDsFor проверяет, что все жанры существуют, и убирает повторы.
func genreIDsFor(st *memState, movie *domain.Movie) ([]int64, error) {
	seen := make(map[int64]bool, len(movie.Genres))
	ids := make([]int64, 0, len(movie.Genres))
	for _, g := range movie.Genres {
		if seen[g.ID] {
			continue
		}
		if _, ok := st.genres[g.ID]; !ok {
			return nil, fmt.Errorf("genre %d: %w", g.ID, ErrNotFound)
		}
		seen[g.ID] = true
		ids = append(ids, g.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func detachGenre(st *memState, genreID int64) {
	for id, mm := range st.movies {
		kept := mm.genreIDs[:0:0]
		for _, gid := range mm.genreIDs {
			if gid != genreID {
				kept = append(kept, gid)
			}
		}
		mm.genreIDs = kept
		st.movies[id] = mm
	}
}

func (r *memMovies) Create(_ context.Context, movie *domain.Movie) error {
	return r.write(func(st *memState) error {
		for _, mm := range st.movies {
			if mm.movie.Title == movie.Title {
				return ErrAlreadyExists
			}
		}
		ids, err := genreIDsFor(st, movie)
		if err != nil {
			return err
		}
		st.nextMovieID++
		movie.ID = st.nextMovieID
		stored := *movie
		stored.Genres = nil
		st.movies[movie.ID] = memMovie{movie: stored, genreIDs: ids}
		*movie = *hydrate(st, st.movies[movie.ID])
		return nil
	})
}

func (r *memMovies) GetByID(_ context.Context, id int64) (*domain.Movie, error) {
	var out *domain.Movie
	err := r.read(func(st *memState) error {
		mm, ok := st.movies[id]
		if !ok {
			return ErrNotFound
		}
		out = hydrate(st, mm)
		return nil
	})
	return out, err
}

func (r *memMovies) GetByKey(_ context.Context, title string) (*domain.Movie, error) {
	var out *domain.Movie
	err := r.read(func(st *memState) error {
		for _, mm := range st.movies {
			if mm.movie.Title == title {
				out = hydrate(st, mm)
				return nil
			}
		}
		return ErrNotFound
	})
	return out, err
}

func (r *memMovies) List(_ context.Context) ([]*domain.Movie, error) {
	var out []*domain.Movie
	err := r.read(func(st *memState) error {
		out = make([]*domain.Movie, 0, len(st.movies))
		for _, mm := range st.movies {
			out = append(out, hydrate(st, mm))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *memMovies) ListByGenre(_ context.Context, genreID int64) ([]*domain.Movie, error) {
	var out []*domain.Movie
	err := r.read(func(st *memState) error {
		for _, mm := range st.movies {
			for _, gid := range mm.genreIDs {
				if gid == genreID {
					out = append(out, hydrate(st, mm))
					break
				}
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *memMovies) Update(_ context.Context, movie *domain.Movie) error {
	return r.write(func(st *memState) error {
		if _, ok := st.movies[movie.ID]; !ok {
			return ErrNotFound
		}
		for _, mm := range st.movies {
			if mm.movie.ID != movie.ID && mm.movie.Title == movie.Title {
				return ErrAlreadyExists
			}
		}
		ids, err := genreIDsFor(st, movie)
		if err != nil {
			return err
		}
		stored := *movie
		stored.Genres = nil
		st.movies[movie.ID] = memMovie{movie: stored, genreIDs: ids}
		*movie = *hydrate(st, st.movies[movie.ID])
		return nil
	})
}

func (r *memMovies) Delete(_ context.Context, id int64) error {
	return r.write(func(st *memState) error {
		if _, ok := st.movies[id]; !ok {
			return ErrNotFound
		}
		delete(st.movies, id)
		return nil
	})
}

func (r *memMovies) DetachGenre(_ context.Context, genreID int64) error {
	return r.write(func(st *memState) error {
		detachGenre(st, genreID)
		return nil
	})
}

// --- Пользователи ---

type memUsers struct{ memView }

func (r *memUsers) Create(_ context.Context, user *domain.User) error {
	return r.write(func(st *memState) error {
		for _, u := range st.users {
			if u.Email == user.Email {
				return ErrAlreadyExists
			}
		}
		st.nextUserID++
		user.ID = st.nextUserID
		st.users[user.ID] = *user
		return nil
	})
}

func (r *memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	var out *domain.User
	err := r.read(func(st *memState) error {
		u, ok := st.users[id]
		if !ok {
			return ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *memUsers) GetByKey(_ context.Context, email string) (*domain.User, error) {
	var out *domain.User
	err := r.read(func(st *memState) error {
		for _, u := range st.users {
			if u.Email == email {
				user := u
				out = &user
				return nil
			}
		}
		return ErrNotFound
	})
	return out, err
}

func (r *memUsers) List(_ context.Context) ([]*domain.User, error) {
	var out []*domain.User
	err := r.read(func(st *memState) error {
		out = make([]*domain.User, 0, len(st.users))
		for _, u := range st.users {
			user := u
			out = append(out, &user)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *memUsers) Update(_ context.Context, user *domain.User) error {
	return r.write(func(st *memState) error {
		if _, ok := st.users[user.ID]; !ok {
			return ErrNotFound
		}
		for _, u := range st.users {
			if u.ID != user.ID && u.Email == user.Email {
				return ErrAlreadyExists
			}
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *memUsers) Delete(_ context.Context, id int64) error {
	return r.write(func(st *memState) error {
		if _, ok := st.users[id]; !ok {
			return ErrNotFound
		}
		delete(st.users, id)
		return nil
	})
}
