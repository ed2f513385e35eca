// internal/service/genre.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"moviemetrics/internal/domain"
	"moviemetrics/internal/store"
)

// GenreService операции над жанрами с проверкой уникальности имени.
type GenreService struct {
	store  store.Store
	logger *slog.Logger
}

func NewGenreService(s store.Store, logger *slog.Logger) *GenreService {
	return &GenreService{store: s, logger: logger}
}

// Create создает жанр; занятое имя дает Conflict.
func (s *GenreService) Create(ctx context.Context, name string) (*domain.Genre, error) {
	var genre *domain.Genre
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		var err error
		genre, err = create(ctx, tx.Genres(), genreEntity, &domain.Genre{Name: name})
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Genre creation failed", slog.String("name", name), slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.InfoContext(ctx, "Genre created", slog.Int64("genreID", genre.ID), slog.String("name", genre.Name))
	return genre, nil
}

func (s *GenreService) GetByID(ctx context.Context, id int64) (*domain.Genre, error) {
	return getByID(ctx, s.store.Genres(), genreEntity, id)
}

func (s *GenreService) GetByName(ctx context.Context, name string) (*domain.Genre, error) {
	return getByKey(ctx, s.store.Genres(), genreEntity, name)
}

func (s *GenreService) GetAll(ctx context.Context) ([]*domain.Genre, error) {
	return getAll(ctx, s.store.Genres())
}

// Update переименовывает жанр. Фильмы ссылаются на жанр по ID и видят новое имя.
func (s *GenreService) Update(ctx context.Context, id int64, name string) (*domain.Genre, error) {
	var genre *domain.Genre
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		var err error
		genre, err = update(ctx, tx.Genres(), genreEntity, id, &domain.Genre{Name: name})
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Genre update failed", slog.Int64("genreID", id), slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.InfoContext(ctx, "Genre updated", slog.Int64("genreID", id), slog.String("name", name))
	return genre, nil
}

// Delete удаляет жанр и в той же транзакции убирает его из всех фильмов.
func (s *GenreService) Delete(ctx context.Context, id int64) (*domain.Genre, error) {
	var genre *domain.Genre
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		if _, err := getByID(ctx, tx.Genres(), genreEntity, id); err != nil {
			return err
		}
		if err := tx.Movies().DetachGenre(ctx, id); err != nil {
			return fmt.Errorf("detach genre %d from movies: %w", id, err)
		}
		var err error
		genre, err = remove(ctx, tx.Genres(), genreEntity, id)
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Genre deletion failed", slog.Int64("genreID", id), slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.InfoContext(ctx, "Genre deleted", slog.Int64("genreID", id), slog.String("name", genre.Name))
	return genre, nil
}

// Movies возвращает фильмы с жанром id.
func (s *GenreService) Movies(ctx context.Context, id int64) ([]*domain.Movie, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Movies().ListByGenre(ctx, id)
}
