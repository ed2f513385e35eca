package grpc

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"moviemetrics/internal/domain"
	"moviemetrics/internal/service"
	"moviemetrics/internal/store"
	"moviemetrics/pkg/auth"
)

type catalogEnv struct {
	client *CatalogClient
	movies *service.MovieService
	users  *service.UserService
}

func newCatalogEnv(t *testing.T) *catalogEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemoryStore(logger)
	users := service.NewUserService(st, &auth.BcryptHasher{Cost: bcrypt.MinCost}, logger)
	genres := service.NewGenreService(st, logger)
	movies := service.NewMovieService(st, logger)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterCatalogServer(srv, NewServer(movies, users, genres, logger))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	client := NewCatalogClientFromConn(conn, logger)
	t.Cleanup(func() { _ = client.Close() })
	return &catalogEnv{client: client, movies: movies, users: users}
}

func TestGetMovieOverGRPC(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	created, err := env.movies.Create(ctx, service.MovieInput{
		Title:       "Saw",
		Description: "A horror movie",
		GenreNames:  []string{"Horror", "Thriller"},
		Popularity:  12.5,
		VoteAverage: 7.1,
		VoteCount:   900,
	})
	if err != nil {
		t.Fatalf("create movie: %v", err)
	}

	got, err := env.client.GetMovie(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetMovie: %v", err)
	}
	if got.ID != created.ID || got.Title != "Saw" || got.VoteCount != 900 || got.VoteAverage != 7.1 {
		t.Fatalf("unexpected movie: %+v", got)
	}
	if len(got.Genres) != 2 || !got.HasGenre("Horror") || !got.HasGenre("Thriller") {
		t.Fatalf("unexpected genres: %+v", got.Genres)
	}

	exists, err := env.client.CheckMovieExists(ctx, created.ID)
	if err != nil || !exists {
		t.Fatalf("CheckMovieExists existing: %v %v", exists, err)
	}
	exists, err = env.client.CheckMovieExists(ctx, created.ID+100)
	if err != nil || exists {
		t.Fatalf("CheckMovieExists missing: %v %v", exists, err)
	}

	_, err = env.client.GetMovie(ctx, created.ID+100)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	_, err = env.client.GetMovie(ctx, 0)
	if !domain.IsInvalid(err) {
		t.Fatalf("expected Invalid for zero id, got %v", err)
	}
}

func TestGetUserOmitsPasswordHash(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	u, err := env.users.Create(ctx, service.UserInput{Email: "a@b.com", Password: "secret1", IsAdmin: true})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	got, err := env.client.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "a@b.com" || got.Role != domain.RoleAdmin || got.PasswordHash != "" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := env.client.GetUser(ctx, u.ID+1); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestGetGenreByName(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	if _, err := env.movies.Create(ctx, service.MovieInput{Title: "Up", Description: "Animated", GenreNames: []string{"Animation"}}); err != nil {
		t.Fatalf("create movie: %v", err)
	}
	g, err := env.client.GetGenreByName(ctx, "Animation")
	if err != nil {
		t.Fatalf("GetGenreByName: %v", err)
	}
	if g.ID == 0 || g.Name != "Animation" {
		t.Fatalf("unexpected genre: %+v", g)
	}
	_, err = env.client.GetGenreByName(ctx, "Drama")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if err.Error() != "Genre with name Drama not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestServerStatusCodes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemoryStore(logger)
	srv := NewServer(service.NewMovieService(st, logger), service.NewUserService(st, &auth.BcryptHasher{Cost: bcrypt.MinCost}, logger), service.NewGenreService(st, logger), logger)
	ctx := context.Background()

	cases := []struct {
		name string
		call func() error
		want codes.Code
	}{
		{"movie zero id", func() error { _, err := srv.GetMovie(ctx, wrapperspb.Int64(0)); return err }, codes.InvalidArgument},
		{"movie missing", func() error { _, err := srv.GetMovie(ctx, wrapperspb.Int64(5)); return err }, codes.NotFound},
		{"exists negative id", func() error { _, err := srv.CheckMovieExists(ctx, wrapperspb.Int64(-1)); return err }, codes.InvalidArgument},
		{"user missing", func() error { _, err := srv.GetUser(ctx, wrapperspb.Int64(5)); return err }, codes.NotFound},
		{"genre empty name", func() error { _, err := srv.GetGenreByName(ctx, wrapperspb.String("")); return err }, codes.InvalidArgument},
	}
	for _, c := range cases {
		if got := status.Code(c.call()); got != c.want {
			t.Fatalf("%s: got %s want %s", c.name, got, c.want)
		}
	}
}
