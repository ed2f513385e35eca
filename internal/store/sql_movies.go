// internal/store/sql_movies.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jmoiron/sqlx"

	"moviemetrics/internal/domain"
)

const movieColumns = `id, title, description, popularity, vote_average, vote_count`

type sqlMovies struct{ sqlConn }

// movieGenreRow строка связи фильма с жанром вместе с данными жанра.
type movieGenreRow struct {
	MovieID int64  `db:"movie_id"`
	ID      int64  `db:"id"`
	Name    string `db:"name"`
}

// attachGenres подтягивает жанры для фильмов одним запросом. Жанры каждого фильма идут по ID.
func (r *sqlMovies) attachGenres(ctx context.Context, ext sqlx.ExtContext, movies []*domain.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	query, args, err := sqlx.In(`SELECT mg.movie_id, g.id, g.name
		FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id
		WHERE mg.movie_id IN (?)
		ORDER BY mg.movie_id, g.id`, ids)
	if err != nil {
		return fmt.Errorf("build genres query: %w", err)
	}
	var rows []movieGenreRow
	if err := sqlx.SelectContext(ctx, ext, &rows, ext.Rebind(query), args...); err != nil {
		r.logger.ErrorContext(ctx, "Failed to load movie genres from DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to load movie genres: %w", err)
	}
	byMovie := make(map[int64][]domain.Genre, len(movies))
	for _, row := range rows {
		byMovie[row.MovieID] = append(byMovie[row.MovieID], domain.Genre{ID: row.ID, Name: row.Name})
	}
	for _, m := range movies {
		m.Genres = byMovie[m.ID]
		if m.Genres == nil {
			m.Genres = []domain.Genre{}
		}
	}
	return nil
}

// writeGenres заменяет связи фильма с жанрами. Несуществующий жанр дает ErrNotFound.
func (r *sqlMovies) writeGenres(ctx context.Context, ext sqlx.ExtContext, movie *domain.Movie) error {
	if _, err := ext.ExecContext(ctx, ext.Rebind(`DELETE FROM movie_genres WHERE movie_id = ?`), movie.ID); err != nil {
		return fmt.Errorf("failed to clear movie genres: %w", err)
	}
	seen := make(map[int64]bool, len(movie.Genres))
	ids := make([]int64, 0, len(movie.Genres))
	for _, g := range movie.Genres {
		if !seen[g.ID] {
			seen[g.ID] = true
			ids = append(ids, g.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, gid := range ids {
		var exists int
		err := sqlx.GetContext(ctx, ext, &exists, ext.Rebind(`SELECT 1 FROM genres WHERE id = ?`), gid)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("genre %d: %w", gid, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check genre %d: %w", gid, err)
		}
		if _, err := ext.ExecContext(ctx, ext.Rebind(`INSERT INTO movie_genres (movie_id, genre_id) VALUES (?, ?)`), movie.ID, gid); err != nil {
			return fmt.Errorf("failed to link genre %d: %w", gid, err)
		}
	}
	return nil
}

// reload перечитывает фильм после записи, чтобы вызывающий получил актуальные жанры.
func (r *sqlMovies) reload(ctx context.Context, ext sqlx.ExtContext, movie *domain.Movie) error {
	fresh, err := r.getOne(ctx, ext, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, movie.ID)
	if err != nil {
		return err
	}
	*movie = *fresh
	return nil
}

// Create создает фильм и его связи с жанрами в одной транзакции.
func (r *sqlMovies) Create(ctx context.Context, movie *domain.Movie) error {
	r.logger.DebugContext(ctx, "Executing Create movie query", slog.String("title", movie.Title))
	err := r.atomic(ctx, func(ext sqlx.ExtContext) error {
		query := ext.Rebind(`INSERT INTO movies (title, description, popularity, vote_average, vote_count)
			VALUES (?, ?, ?, ?, ?) RETURNING id`)
		if err := sqlx.GetContext(ctx, ext, &movie.ID, query,
			movie.Title, movie.Description, movie.Popularity, movie.VoteAverage, movie.VoteCount); err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("failed to create movie: %w", err)
		}
		if err := r.writeGenres(ctx, ext, movie); err != nil {
			return err
		}
		return r.reload(ctx, ext, movie)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Movie already exists (unique constraint violation in DB)", slog.String("title", movie.Title))
		} else if !errors.Is(err, ErrNotFound) {
			r.logger.ErrorContext(ctx, "Failed to create movie in DB", slog.String("error", err.Error()))
		}
		return err
	}
	r.logger.InfoContext(ctx, "Movie created successfully in DB", slog.Int64("movieID", movie.ID))
	return nil
}

func (r *sqlMovies) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	return r.getOne(ctx, r.ext, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
}

func (r *sqlMovies) GetByKey(ctx context.Context, title string) (*domain.Movie, error) {
	return r.getOne(ctx, r.ext, `SELECT `+movieColumns+` FROM movies WHERE title = ?`, title)
}

func (r *sqlMovies) getOne(ctx context.Context, ext sqlx.ExtContext, query string, arg any) (*domain.Movie, error) {
	var movie domain.Movie
	if err := sqlx.GetContext(ctx, ext, &movie, ext.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.DebugContext(ctx, "Movie not found in DB", slog.Any("key", arg))
			return nil, ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get movie from DB", slog.Any("key", arg), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	if err := r.attachGenres(ctx, ext, []*domain.Movie{&movie}); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *sqlMovies) List(ctx context.Context) ([]*domain.Movie, error) {
	return r.list(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY id`)
}

// ListByGenre возвращает фильмы, у которых среди жанров есть genreID.
func (r *sqlMovies) ListByGenre(ctx context.Context, genreID int64) ([]*domain.Movie, error) {
	return r.list(ctx, `SELECT `+movieColumns+` FROM movies
		WHERE id IN (SELECT movie_id FROM movie_genres WHERE genre_id = ?)
		ORDER BY id`, genreID)
}

func (r *sqlMovies) list(ctx context.Context, query string, args ...any) ([]*domain.Movie, error) {
	var movies []*domain.Movie
	if err := sqlx.SelectContext(ctx, r.ext, &movies, r.q(query), args...); err != nil {
		r.logger.ErrorContext(ctx, "Failed to list movies from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	if err := r.attachGenres(ctx, r.ext, movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// Update полностью заменяет поля фильма и набор его жанров.
func (r *sqlMovies) Update(ctx context.Context, movie *domain.Movie) error {
	err := r.atomic(ctx, func(ext sqlx.ExtContext) error {
		query := ext.Rebind(`UPDATE movies SET title = ?, description = ?, popularity = ?, vote_average = ?, vote_count = ?
			WHERE id = ?`)
		res, err := ext.ExecContext(ctx, query,
			movie.Title, movie.Description, movie.Popularity, movie.VoteAverage, movie.VoteCount, movie.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("failed to update movie: %w", err)
		}
		if err := rowsAffected(res); err != nil {
			return err
		}
		if err := r.writeGenres(ctx, ext, movie); err != nil {
			return err
		}
		return r.reload(ctx, ext, movie)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Update failed: movie title already exists (DB constraint)", slog.Int64("movieID", movie.ID))
		}
		return err
	}
	r.logger.InfoContext(ctx, "Movie updated successfully in DB", slog.Int64("movieID", movie.ID))
	return nil
}

func (r *sqlMovies) Delete(ctx context.Context, id int64) error {
	return r.atomic(ctx, func(ext sqlx.ExtContext) error {
		if _, err := ext.ExecContext(ctx, ext.Rebind(`DELETE FROM movie_genres WHERE movie_id = ?`), id); err != nil {
			return fmt.Errorf("failed to unlink movie genres: %w", err)
		}
		res, err := ext.ExecContext(ctx, ext.Rebind(`DELETE FROM movies WHERE id = ?`), id)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to delete movie in DB", slog.Int64("movieID", id), slog.String("error", err.Error()))
			return fmt.Errorf("failed to delete movie: %w", err)
		}
		return rowsAffected(res)
	})
}

// DetachGenre убирает жанр из всех фильмов, сами фильмы остаются.
func (r *sqlMovies) DetachGenre(ctx context.Context, genreID int64) error {
	res, err := r.ext.ExecContext(ctx, r.q(`DELETE FROM movie_genres WHERE genre_id = ?`), genreID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to detach genre from movies", slog.Int64("genreID", genreID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to detach genre: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		r.logger.DebugContext(ctx, "Genre detached from movies", slog.Int64("genreID", genreID), slog.Int64("links", n))
	}
	return nil
}
