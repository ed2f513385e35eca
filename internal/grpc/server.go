// internal/grpc/server.go
package grpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"moviemetrics/internal/domain"
	"moviemetrics/internal/service"
)

// Server реализует CatalogServer поверх сервисного слоя.
type Server struct {
	movies *service.MovieService
	users  *service.UserService
	genres *service.GenreService
	logger *slog.Logger
}

// NewServer создает новый экземпляр gRPC сервера каталога.
// Сервер не проверяет токены и отдает email и роль пользователя любому клиенту,
// поэтому порт gRPC должен быть доступен только во внутренней сети.
func NewServer(movies *service.MovieService, users *service.UserService, genres *service.GenreService, logger *slog.Logger) *Server {
	return &Server{
		movies: movies,
		users:  users,
		genres: genres,
		logger: logger,
	}
}

var _ CatalogServer = (*Server)(nil)

// toStatus переводит бизнес-ошибку в gRPC статус.
func toStatus(err error) error {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case domain.KindInvalid:
		return status.Error(codes.InvalidArgument, err.Error())
	case domain.KindConflict:
		return status.Error(codes.AlreadyExists, err.Error())
	default:
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}
}

func genreToValue(g domain.Genre) map[string]any {
	return map[string]any{"id": g.ID, "name": g.Name}
}

// movieToProto преобразует фильм в Struct с теми же ключами, что и JSON ответ HTTP API.
func movieToProto(m *domain.Movie) (*structpb.Struct, error) {
	genres := make([]any, 0, len(m.Genres))
	for _, g := range m.Genres {
		genres = append(genres, genreToValue(g))
	}
	return structpb.NewStruct(map[string]any{
		"id":          m.ID,
		"title":       m.Title,
		"description": m.Description,
		"popularity":  m.Popularity,
		"voteAverage": m.VoteAverage,
		"voteCount":   m.VoteCount,
		"genres":      genres,
	})
}

// userToProto без хеша пароля.
func userToProto(u *domain.User) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":    u.ID,
		"email": u.Email,
		"role":  string(u.Role),
	})
}

func (s *Server) GetMovie(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	s.logger.InfoContext(ctx, "gRPC GetMovie called", slog.Int64("movie_id", req.GetValue()))

	if req.GetValue() <= 0 {
		s.logger.WarnContext(ctx, "gRPC GetMovie called with invalid movie_id")
		return nil, status.Errorf(codes.InvalidArgument, "movie_id must be positive")
	}
	movie, err := s.movies.GetByID(ctx, req.GetValue())
	if err != nil {
		if !domain.IsNotFound(err) {
			s.logger.ErrorContext(ctx, "Failed to get movie for gRPC", slog.Int64("movie_id", req.GetValue()), slog.String("error", err.Error()))
		}
		return nil, toStatus(err)
	}
	out, err := movieToProto(movie)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode movie: %v", err)
	}
	return out, nil
}

// CheckMovieExists отвечает false для отсутствующего фильма, а не ошибкой NotFound.
func (s *Server) CheckMovieExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error) {
	s.logger.InfoContext(ctx, "gRPC CheckMovieExists called", slog.Int64("movie_id", req.GetValue()))

	if req.GetValue() <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "movie_id must be positive")
	}
	_, err := s.movies.GetByID(ctx, req.GetValue())
	switch {
	case err == nil:
		return wrapperspb.Bool(true), nil
	case domain.IsNotFound(err):
		return wrapperspb.Bool(false), nil
	default:
		s.logger.ErrorContext(ctx, "Failed to check movie existence", slog.Int64("movie_id", req.GetValue()), slog.String("error", err.Error()))
		return nil, toStatus(err)
	}
}

func (s *Server) GetUser(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	s.logger.InfoContext(ctx, "gRPC GetUser called", slog.Int64("user_id", req.GetValue()))

	if req.GetValue() <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "user_id must be positive")
	}
	user, err := s.users.GetByID(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := userToProto(user)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode user: %v", err)
	}
	return out, nil
}

func (s *Server) GetGenreByName(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	s.logger.InfoContext(ctx, "gRPC GetGenreByName called", slog.String("name", req.GetValue()))

	if req.GetValue() == "" {
		return nil, status.Errorf(codes.InvalidArgument, "name cannot be empty")
	}
	genre, err := s.genres.GetByName(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(genreToValue(*genre))
}
