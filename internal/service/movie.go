// internal/service/movie.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"moviemetrics/internal/domain"
	"moviemetrics/internal/store"
)

// MovieInput данные для создания или полной замены фильма.
// GenreIDs != nil выбирает строгое разрешение жанров по ID, иначе жанры ищутся по именам
// и недостающие создаются.
type MovieInput struct {
	Title       string
	Description string
	Popularity  float64
	VoteAverage float64
	VoteCount   int64
	GenreNames  []string
	GenreIDs    []int64
}

// MovieInputFromRequest переводит тело HTTP запроса во входные данные сервиса.
func MovieInputFromRequest(req domain.MovieRequest) MovieInput {
	return MovieInput{
		Title:       req.Title,
		Description: req.Description,
		Popularity:  req.Popularity,
		VoteAverage: req.VoteAverage,
		VoteCount:   req.VoteCount,
		GenreNames:  req.Genres,
		GenreIDs:    req.GenreIDs,
	}
}

func (in MovieInput) movie(genres []domain.Genre) *domain.Movie {
	return &domain.Movie{
		Title:       in.Title,
		Description: in.Description,
		Popularity:  in.Popularity,
		VoteAverage: in.VoteAverage,
		VoteCount:   in.VoteCount,
		Genres:      genres,
	}
}

// MovieFilter необязательные условия выборки фильмов. Nil граница не ограничивает.
// Genres совпадает, если у фильма есть хотя бы один из перечисленных жанров.
type MovieFilter struct {
	MinVoteCount   *int64
	MaxVoteCount   *int64
	MinVoteAverage *float64
	MaxVoteAverage *float64
	MinPopularity  *float64
	MaxPopularity  *float64
	Genres         []string
}

// Match проверяет фильм по всем условиям фильтра.
func (f MovieFilter) Match(m *domain.Movie) bool {
	if f.MinVoteCount != nil && m.VoteCount < *f.MinVoteCount {
		return false
	}
	if f.MaxVoteCount != nil && m.VoteCount > *f.MaxVoteCount {
		return false
	}
	if f.MinVoteAverage != nil && m.VoteAverage < *f.MinVoteAverage {
		return false
	}
	if f.MaxVoteAverage != nil && m.VoteAverage > *f.MaxVoteAverage {
		return false
	}
	if f.MinPopularity != nil && m.Popularity < *f.MinPopularity {
		return false
	}
	if f.MaxPopularity != nil && m.Popularity > *f.MaxPopularity {
		return false
	}
	if len(f.Genres) == 0 {
		return true
	}
	for _, name := range f.Genres {
		if m.HasGenre(name) {
			return true
		}
	}
	return false
}

// MovieService операции над фильмами, включая разрешение жанров.
type MovieService struct {
	store  store.Store
	logger *slog.Logger
}

func NewMovieService(s store.Store, logger *slog.Logger) *MovieService {
	return &MovieService{store: s, logger: logger}
}

// resolveGenresByName находит жанры по именам, создавая недостающие.
func resolveGenresByName(ctx context.Context, genres store.GenreRepository, names []string) ([]domain.Genre, error) {
	seen := make(map[string]bool, len(names))
	out := make([]domain.Genre, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		g, err := getByKey(ctx, genres, genreEntity, name)
		if domain.IsNotFound(err) {
			g, err = create(ctx, genres, genreEntity, &domain.Genre{Name: name})
		}
		if err != nil {
			return nil, fmt.Errorf("resolve genre %q: %w", name, err)
		}
		out = append(out, *g)
	}
	return out, nil
}

// resolveGenresByID находит жанры по ID. Любой отсутствующий ID дает NotFound без частичного результата.
func resolveGenresByID(ctx context.Context, genres store.GenreRepository, ids []int64) ([]domain.Genre, error) {
	seen := make(map[int64]bool, len(ids))
	out := make([]domain.Genre, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		g, err := getByID(ctx, genres, genreEntity, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, nil
}

func resolveGenres(ctx context.Context, genres store.GenreRepository, in MovieInput) ([]domain.Genre, error) {
	if in.GenreIDs != nil {
		return resolveGenresByID(ctx, genres, in.GenreIDs)
	}
	return resolveGenresByName(ctx, genres, in.GenreNames)
}

// ResolveGenresByName разрешает имена жанров в отдельной транзакции.
func (s *MovieService) ResolveGenresByName(ctx context.Context, names []string) ([]domain.Genre, error) {
	var out []domain.Genre
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = resolveGenresByName(ctx, tx.Genres(), names)
		return err
	})
	return out, err
}

// ResolveGenresByID разрешает ID жанров; ничего не создает.
func (s *MovieService) ResolveGenresByID(ctx context.Context, ids []int64) ([]domain.Genre, error) {
	return resolveGenresByID(ctx, s.store.Genres(), ids)
}

// Create разрешает жанры и создает фильм в одной транзакции:
// если фильм не сохранился, автоматически созданные жанры тоже откатываются.
func (s *MovieService) Create(ctx context.Context, in MovieInput) (*domain.Movie, error) {
	var movie *domain.Movie
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		genres, err := resolveGenres(ctx, tx.Genres(), in)
		if err != nil {
			return err
		}
		movie, err = create(ctx, tx.Movies(), movieEntity, in.movie(genres))
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Movie creation failed", slog.String("title", in.Title), slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.InfoContext(ctx, "Movie created", slog.Int64("movieID", movie.ID), slog.String("title", movie.Title))
	return movie, nil
}

func (s *MovieService) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	return getByID(ctx, s.store.Movies(), movieEntity, id)
}

func (s *MovieService) GetByTitle(ctx context.Context, title string) (*domain.Movie, error) {
	return getByKey(ctx, s.store.Movies(), movieEntity, title)
}

func (s *MovieService) GetAll(ctx context.Context) ([]*domain.Movie, error) {
	return getAll(ctx, s.store.Movies())
}

// List возвращает фильмы, подходящие под фильтр, в порядке ID.
func (s *MovieService) List(ctx context.Context, filter MovieFilter) ([]*domain.Movie, error) {
	movies, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Movie, 0, len(movies))
	for _, m := range movies {
		if filter.Match(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Update полностью заменяет фильм id: новый набор жанров заменяет старый.
func (s *MovieService) Update(ctx context.Context, id int64, in MovieInput) (*domain.Movie, error) {
	var movie *domain.Movie
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		if _, err := getByID(ctx, tx.Movies(), movieEntity, id); err != nil {
			return err
		}
		genres, err := resolveGenres(ctx, tx.Genres(), in)
		if err != nil {
			return err
		}
		movie, err = update(ctx, tx.Movies(), movieEntity, id, in.movie(genres))
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Movie update failed", slog.Int64("movieID", id), slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.InfoContext(ctx, "Movie updated", slog.Int64("movieID", id), slog.String("title", movie.Title))
	return movie, nil
}

func (s *MovieService) Delete(ctx context.Context, id int64) (*domain.Movie, error) {
	var movie *domain.Movie
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		var err error
		movie, err = remove(ctx, tx.Movies(), movieEntity, id)
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Movie deletion failed", slog.Int64("movieID", id), slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.InfoContext(ctx, "Movie deleted", slog.Int64("movieID", id), slog.String("title", movie.Title))
	return movie, nil
}

// Compare возвращает разницу показателей фильма title и фильма otherTitle.
func (s *MovieService) Compare(ctx context.Context, title, otherTitle string) (*domain.MovieComparison, error) {
	first, err := s.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	second, err := s.GetByTitle(ctx, otherTitle)
	if err != nil {
		return nil, err
	}
	return &domain.MovieComparison{
		ComparedMovieTitle:    first.Title,
		ComparedToMovieTitle:  second.Title,
		VoteCountDifference:   first.VoteCount - second.VoteCount,
		VoteAverageDifference: first.VoteAverage - second.VoteAverage,
		PopularityDifference:  first.Popularity - second.Popularity,
	}, nil
}
