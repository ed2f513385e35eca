// cmd/moviemetrics/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	httpAPI "moviemetrics/internal/api"
	"moviemetrics/internal/blob"
	"moviemetrics/internal/config"
	grpcServer "moviemetrics/internal/grpc"
	"moviemetrics/internal/service"
	"moviemetrics/internal/store"
	"moviemetrics/pkg/auth"
)

// openStore выбирает хранилище по DB_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	if cfg.DBDriver == config.DriverMemory {
		logger.Warn("Using in-memory store, data will be lost on restart. Use /data/save to keep a dump.")
		return store.NewMemoryStore(logger), nil
	}
	logger.Info("Attempting to connect to database", slog.String("driver", cfg.DBDriver))
	return store.NewSQLStore(ctx, cfg.DBDriver, cfg.DatabaseURL, logger)
}

func run(logger *slog.Logger, level *slog.LevelVar) error {
	cfg, err := config.Load(logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level.Set(cfg.LogLevel)

	ctx := context.Background()
	validate := validator.New()

	// --- JWT и пароли ---
	tokenManager, err := auth.NewTokenManager(cfg.JWTSecretKey, cfg.JWTTokenTTL, logger)
	if err != nil {
		return fmt.Errorf("create token manager: %w", err)
	}
	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("create password hasher: %w", err)
	}
	logger.Info("Token manager initialized.")

	// --- Хранилища ---
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("Failed to close store", slog.String("error", err.Error()))
		} else {
			logger.Info("Store closed.")
		}
	}()

	archive, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return fmt.Errorf("open dump archive: %w", err)
	}
	logger.Info("Dump archive initialized", slog.String("driver", string(archive.Driver())))

	// --- Сервисы ---
	users := service.NewUserService(st, hasher, logger)
	genres := service.NewGenreService(st, logger)
	movies := service.NewMovieService(st, logger)
	svc := httpAPI.Services{
		Genres: genres,
		Movies: movies,
		Users:  users,
		Auth:   service.NewAuthService(users, hasher, tokenManager, logger),
		Data:   service.NewDataService(genres, movies, users, archive, validate, logger),
	}

	if cfg.AdminEmail != "" {
		admin, err := svc.Auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		logger.Info("Bootstrap admin ready", slog.Int64("userID", admin.ID))
	}

	// --- gRPC сервер ---
	// Без аутентификации: GRPC_PORT не публикуется наружу, только для соседних сервисов.
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen for gRPC on port %s: %w", cfg.GRPCPort, err)
	}
	grpcSrv := grpc.NewServer()
	grpcServer.RegisterCatalogServer(grpcSrv, grpcServer.NewServer(movies, users, genres, logger))
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(grpcServer.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	go func() {
		logger.Info("Catalog gRPC Service starting", slog.String("port", cfg.GRPCPort))
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("Catalog gRPC Service Serve() failed", slog.String("error", err.Error()))
		}
	}()

	// --- HTTP сервер ---
	opts := httpAPI.RouterOptions{Metrics: httpAPI.NewMetrics()}
	if cfg.RateLimitEnabled {
		opts.RateLimiter = httpAPI.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	}
	httpRouter := httpAPI.NewHTTPRouter(httpAPI.NewHTTPHandler(svc, logger, validate, tokenManager), opts)
	httpSrv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Catalog HTTP Service starting", slog.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		logger.Error("Catalog HTTP Service ListenAndServe() failed", slog.String("error", err.Error()))
	}
	logger.Info("Catalog Service shutting down...")

	healthSrv.Shutdown()
	ctxHTTP, cancelHTTP := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelHTTP()
	if err := httpSrv.Shutdown(ctxHTTP); err != nil {
		logger.Error("Catalog HTTP Server Shutdown Failed", slog.String("error", err.Error()))
	} else {
		logger.Info("Catalog HTTP Server gracefully stopped.")
	}

	grpcSrv.GracefulStop()
	logger.Info("Catalog gRPC Service gracefully stopped.")
	return nil
}

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(logger, level); err != nil {
		logger.Error("Catalog Service failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
