// internal/grpc/client.go
package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"moviemetrics/internal/domain"
)

const defaultCallTimeout = 3 * time.Second

// CatalogClient клиент сервиса Catalog для других сервисов.
type CatalogClient struct {
	conn        *grpc.ClientConn
	logger      *slog.Logger
	callTimeout time.Duration
}

// NewCatalogClient подключается к серверу каталога по адресу addr (например, "localhost:9090").
// Без опций используется незащищенное соединение; в продакшене передайте TLS credentials.
// Сервер Catalog не аутентифицирует вызовы: подключайтесь только из внутренней сети.
func NewCatalogClient(addr string, logger *slog.Logger, opts ...grpc.DialOption) (*CatalogClient, error) {
	logger.Info("Creating Catalog gRPC client", slog.String("address", addr))
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		logger.Error("Failed to create Catalog gRPC client", slog.String("address", addr), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to connect to catalog service at %s: %w", addr, err)
	}
	return NewCatalogClientFromConn(conn, logger), nil
}

// NewCatalogClientFromConn оборачивает уже открытое соединение. Close закроет его.
func NewCatalogClientFromConn(conn *grpc.ClientConn, logger *slog.Logger) *CatalogClient {
	return &CatalogClient{conn: conn, logger: logger, callTimeout: defaultCallTimeout}
}

func (c *CatalogClient) invoke(ctx context.Context, method string, in, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	if err := c.conn.Invoke(callCtx, fullMethod(method), in, out); err != nil {
		st, _ := status.FromError(err)
		c.logger.WarnContext(ctx, "Catalog gRPC call failed",
			slog.String("method", method),
			slog.String("code", st.Code().String()),
			slog.String("message", st.Message()))
		return err
	}
	return nil
}

// fromStatus переводит NotFound и InvalidArgument обратно в бизнес-ошибки.
func fromStatus(err error, entity, field string, value any) error {
	switch status.Code(err) {
	case codes.NotFound:
		return domain.NotFound(entity, field, value)
	case codes.InvalidArgument:
		return domain.Invalid(status.Convert(err).Message())
	default:
		return fmt.Errorf("grpc %s lookup failed: %w", entity, err)
	}
}

// decodeStruct раскладывает Struct в доменную модель по JSON тегам.
func decodeStruct(s *structpb.Struct, dst any) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode struct: %w", err)
	}
	return nil
}

func (c *CatalogClient) GetMovie(ctx context.Context, id int64) (*domain.Movie, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, methodGetMovie, wrapperspb.Int64(id), out); err != nil {
		return nil, fromStatus(err, "Movie", "ID", id)
	}
	var movie domain.Movie
	if err := decodeStruct(out, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (c *CatalogClient) CheckMovieExists(ctx context.Context, id int64) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.invoke(ctx, methodCheckMovieExists, wrapperspb.Int64(id), out); err != nil {
		return false, fromStatus(err, "Movie", "ID", id)
	}
	return out.GetValue(), nil
}

func (c *CatalogClient) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, methodGetUser, wrapperspb.Int64(id), out); err != nil {
		return nil, fromStatus(err, "User", "ID", id)
	}
	var user domain.User
	if err := decodeStruct(out, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *CatalogClient) GetGenreByName(ctx context.Context, name string) (*domain.Genre, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, methodGetGenreByName, wrapperspb.String(name), out); err != nil {
		return nil, fromStatus(err, "Genre", "Name", name)
	}
	var genre domain.Genre
	if err := decodeStruct(out, &genre); err != nil {
		return nil, err
	}
	return &genre, nil
}

// Close закрывает gRPC соединение.
func (c *CatalogClient) Close() error {
	if c.conn != nil {
		c.logger.Info("Closing gRPC connection to Catalog")
		return c.conn.Close()
	}
	return nil
}
