// internal/blob/factory.go
package blob

import (
	"context"
	"fmt"
)

// Config выбирает драйвер архива и его параметры.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open создает Store по конфигурации. Пустой драйвер означает fs.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFilesystem, "":
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
