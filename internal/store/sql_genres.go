// internal/store/sql_genres.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"moviemetrics/internal/domain"
)

type sqlGenres struct{ sqlConn }

// Create создает новый жанр в базе данных.
func (r *sqlGenres) Create(ctx context.Context, genre *domain.Genre) error {
	query := r.q(`INSERT INTO genres (name) VALUES (?) RETURNING id`)

	r.logger.DebugContext(ctx, "Executing Create genre query", slog.String("name", genre.Name))
	if err := sqlx.GetContext(ctx, r.ext, &genre.ID, query, genre.Name); err != nil {
		if isUniqueViolation(err) {
			r.logger.WarnContext(ctx, "Genre already exists (unique constraint violation in DB)", slog.String("name", genre.Name))
			return ErrAlreadyExists
		}
		r.logger.ErrorContext(ctx, "Failed to create genre in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create genre: %w", err)
	}
	r.logger.InfoContext(ctx, "Genre created successfully in DB", slog.Int64("genreID", genre.ID))
	return nil
}

func (r *sqlGenres) GetByID(ctx context.Context, id int64) (*domain.Genre, error) {
	return r.getOne(ctx, `SELECT id, name FROM genres WHERE id = ?`, id)
}

func (r *sqlGenres) GetByKey(ctx context.Context, name string) (*domain.Genre, error) {
	return r.getOne(ctx, `SELECT id, name FROM genres WHERE name = ?`, name)
}

func (r *sqlGenres) getOne(ctx context.Context, query string, arg any) (*domain.Genre, error) {
	var genre domain.Genre
	if err := sqlx.GetContext(ctx, r.ext, &genre, r.q(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get genre from DB", slog.Any("key", arg), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get genre: %w", err)
	}
	return &genre, nil
}

func (r *sqlGenres) List(ctx context.Context) ([]*domain.Genre, error) {
	var genres []*domain.Genre
	if err := sqlx.SelectContext(ctx, r.ext, &genres, `SELECT id, name FROM genres ORDER BY id`); err != nil {
		r.logger.ErrorContext(ctx, "Failed to list genres from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

func (r *sqlGenres) Update(ctx context.Context, genre *domain.Genre) error {
	res, err := r.ext.ExecContext(ctx, r.q(`UPDATE genres SET name = ? WHERE id = ?`), genre.Name, genre.ID)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.WarnContext(ctx, "Update failed: genre name already exists (DB constraint)", slog.Int64("genreID", genre.ID))
			return ErrAlreadyExists
		}
		r.logger.ErrorContext(ctx, "Failed to update genre in DB", slog.Int64("genreID", genre.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update genre: %w", err)
	}
	return rowsAffected(res)
}

// Delete удаляет жанр вместе с его связями с фильмами.
func (r *sqlGenres) Delete(ctx context.Context, id int64) error {
	return r.atomic(ctx, func(ext sqlx.ExtContext) error {
		if _, err := ext.ExecContext(ctx, r.q(`DELETE FROM movie_genres WHERE genre_id = ?`), id); err != nil {
			return fmt.Errorf("failed to detach genre: %w", err)
		}
		res, err := ext.ExecContext(ctx, r.q(`DELETE FROM genres WHERE id = ?`), id)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to delete genre in DB", slog.Int64("genreID", id), slog.String("error", err.Error()))
			return fmt.Errorf("failed to delete genre: %w", err)
		}
		return rowsAffected(res)
	})
}
