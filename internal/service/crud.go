// internal/service/crud.go
package service

import (
	"context"
	"errors"
	"fmt"

	"moviemetrics/internal/domain"
	"moviemetrics/internal/store"
)

// entity описывает тип записи для обобщенных CRUD операций:
// имя сущности, поле естественного ключа и доступ к ключу и ID.
type entity[T any] struct {
	name  string // "Genre"
	field string // "Name"
	key   func(*T) string
	id    func(*T) int64
	setID func(*T, int64)
}

var genreEntity = entity[domain.Genre]{
	name:  "Genre",
	field: "Name",
	key:   func(g *domain.Genre) string { return g.Name },
	id:    func(g *domain.Genre) int64 { return g.ID },
	setID: func(g *domain.Genre, id int64) { g.ID = id },
}

var movieEntity = entity[domain.Movie]{
	name:  "Movie",
	field: "Title",
	key:   func(m *domain.Movie) string { return m.Title },
	id:    func(m *domain.Movie) int64 { return m.ID },
	setID: func(m *domain.Movie, id int64) { m.ID = id },
}

var userEntity = entity[domain.User]{
	name:  "User",
	field: "Email",
	key:   func(u *domain.User) string { return u.Email },
	id:    func(u *domain.User) int64 { return u.ID },
	setID: func(u *domain.User, id int64) { u.ID = id },
}

// translate переводит ошибки хранилища в бизнес-ошибки для записи rec.
func (e entity[T]) translate(err error, rec *T) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrAlreadyExists):
		return domain.Conflict(e.name, e.field, e.key(rec))
	default:
		return err
	}
}

// create сохраняет запись, если ее ключ еще не занят.
// Проверка до записи не атомарна; уникальный индекс хранилища ловит гонку.
func create[T any](ctx context.Context, repo store.Repository[T], e entity[T], rec *T) (*T, error) {
	_, err := repo.GetByKey(ctx, e.key(rec))
	switch {
	case err == nil:
		return nil, domain.Conflict(e.name, e.field, e.key(rec))
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("check %s %s: %w", e.name, e.field, err)
	}
	e.setID(rec, 0)
	if err := repo.Create(ctx, rec); err != nil {
		return nil, e.translate(err, rec)
	}
	return rec, nil
}

func getByID[T any](ctx context.Context, repo store.Repository[T], e entity[T], id int64) (*T, error) {
	rec, err := repo.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.NotFound(e.name, "id", id)
	}
	return rec, err
}

func getByKey[T any](ctx context.Context, repo store.Repository[T], e entity[T], key string) (*T, error) {
	rec, err := repo.GetByKey(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.NotFound(e.name, e.field, key)
	}
	return rec, err
}

func getAll[T any](ctx context.Context, repo store.Repository[T]) ([]*T, error) {
	return repo.List(ctx)
}

// update полностью заменяет запись id на candidate.
// Конфликт только если ключ занят другой записью; свой текущий ключ конфликтом не считается.
func update[T any](ctx context.Context, repo store.Repository[T], e entity[T], id int64, candidate *T) (*T, error) {
	if _, err := getByID(ctx, repo, e, id); err != nil {
		return nil, err
	}
	found, err := repo.GetByKey(ctx, e.key(candidate))
	switch {
	case err == nil && e.id(found) != id:
		return nil, domain.Conflict(e.name, e.field, e.key(candidate))
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("check %s %s: %w", e.name, e.field, err)
	}
	e.setID(candidate, id)
	if err := repo.Update(ctx, candidate); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NotFound(e.name, "id", id)
		}
		return nil, e.translate(err, candidate)
	}
	return candidate, nil
}

// remove удаляет запись и возвращает ее состояние до удаления.
func remove[T any](ctx context.Context, repo store.Repository[T], e entity[T], id int64) (*T, error) {
	rec, err := getByID(ctx, repo, e, id)
	if err != nil {
		return nil, err
	}
	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NotFound(e.name, "id", id)
		}
		return nil, err
	}
	return rec, nil
}
