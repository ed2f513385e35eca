// internal/blob/blob.go
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Driver идентификатор реализации хранилища.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // локальная файловая система (по умолчанию)
	DriverS3         Driver = "s3"     // S3 / MinIO
	DriverMemory     Driver = "memory" // в памяти (тесты)
)

// Ошибки хранилища blob.
var (
	ErrNotFound   = errors.New("blob not found")
	ErrExists     = errors.New("blob already exists")
	ErrInvalidKey = errors.New("invalid blob key")
)

// PutOptions необязательные параметры Put.
type PutOptions struct {
	ContentType string
}

// Info описывает сохраненный объект.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"sizeBytes"`
	ContentType  string    `json:"contentType,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

// Store минимальная S3-подобная абстракция для архива дампов.
type Store interface {
	// Put сохраняет новый объект. Если ключ уже занят, возвращает ErrExists.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get возвращает объект; вызывающий закрывает ReadCloser. Нет объекта - ErrNotFound.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// List возвращает объекты с префиксом prefix, отсортированные по ключу.
	List(ctx context.Context, prefix string) ([]Info, error)
	// Delete удаляет объект и сообщает, существовал ли он.
	Delete(ctx context.Context, key string) (bool, error)
	Driver() Driver
}

// CleanKey нормализует ключ и запрещает выход за пределы хранилища.
func CleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q contains a backslash", ErrInvalidKey, key)
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q escapes the root", ErrInvalidKey, key)
		}
	}
	clean := path.Clean(key)
	if clean == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return clean, nil
}
