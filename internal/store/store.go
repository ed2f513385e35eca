// internal/store/store.go
package store

import (
	"context"
	"errors"

	"moviemetrics/internal/domain"
)

// Ошибки хранилища. Сервисный слой переводит их в domain.Error.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record with this unique key already exists")
)

// Repository определяет операции хранилища над одним типом записей.
// Key - естественный ключ записи: имя жанра, название фильма или email пользователя.
type Repository[T any] interface {
	// Create сохраняет новую запись и проставляет ей ID.
	Create(ctx context.Context, rec *T) error
	GetByID(ctx context.Context, id int64) (*T, error)
	GetByKey(ctx context.Context, key string) (*T, error)
	// List возвращает все записи, упорядоченные по ID.
	List(ctx context.Context) ([]*T, error)
	// Update полностью заменяет запись с rec.ID.
	Update(ctx context.Context, rec *T) error
	Delete(ctx context.Context, id int64) error
}

// GenreRepository хранилище жанров
type GenreRepository interface {
	Repository[domain.Genre]
}

// MovieRepository хранилище фильмов и их связей с жанрами
type MovieRepository interface {
	Repository[domain.Movie]
	// DetachGenre удаляет жанр из множества жанров каждого фильма.
	DetachGenre(ctx context.Context, genreID int64) error
	ListByGenre(ctx context.Context, genreID int64) ([]*domain.Movie, error)
}

// UserRepository хранилище пользователей
type UserRepository interface {
	Repository[domain.User]
}

// Tx набор репозиториев внутри одной транзакции.
type Tx interface {
	Genres() GenreRepository
	Movies() MovieRepository
	Users() UserRepository
}

// Store агрегирует репозитории и границу транзакции.
// Репозитории, полученные напрямую от Store, выполняют каждую операцию отдельно.
type Store interface {
	Tx
	// RunInTx выполняет fn в транзакции: либо все записи через tx фиксируются, либо ни одна.
	// Внутри fn нельзя обращаться к репозиториям самого Store или вызывать RunInTx повторно.
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
