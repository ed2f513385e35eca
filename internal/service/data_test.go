package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"moviemetrics/internal/domain"
)

func seedCatalog(t *testing.T, s *services) {
	t.Helper()
	ctx := context.Background()
	if _, err := s.auth.Register(ctx, "user@b.com", "user-pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := s.auth.EnsureAdmin(ctx, "admin@b.com", "admin-pw"); err != nil {
		t.Fatalf("admin: %v", err)
	}
	mustGenre(t, s, "Documentary")
	mustMovie(t, s, MovieInput{Title: "Inception", GenreNames: []string{"Sci-Fi", "Action"}, Popularity: 80, VoteAverage: 8.8, VoteCount: 2000})
	mustMovie(t, s, MovieInput{Title: "Up", GenreNames: []string{"Animation"}, VoteCount: 10})
}

func TestDumpDocumentShape(t *testing.T) {
	s := newServices(t)
	seedCatalog(t, s)

	data, err := s.data.Dump(context.Background())
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	var raw map[string][]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"genres", "movies", "users"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("missing %q array in %s", key, data)
		}
	}
	inception := raw["movies"][0]
	for _, field := range []string{"title", "description", "genres", "popularity", "voteAverage", "voteCount"} {
		if _, ok := inception[field]; !ok {
			t.Fatalf("movie record missing %q: %v", field, inception)
		}
	}
	genres := inception["genres"].([]any)
	if len(genres) != 2 || genres[0] != "Action" || genres[1] != "Sci-Fi" {
		t.Fatalf("expected sorted genre names, got %v", genres)
	}
	for _, u := range raw["users"] {
		if u["alreadyHashed"] != true {
			t.Fatalf("exported users must be marked hashed: %v", u)
		}
		if u["email"] == "admin@b.com" && u["isAdmin"] != true {
			t.Fatalf("admin flag lost: %v", u)
		}
	}
}

func TestDumpLoadRoundTrip(t *testing.T) {
	for name, open := range map[string]func(*testing.T) *services{"memory": newServices, "sqlite": newSQLiteServices} {
		t.Run(name, func(t *testing.T) {
			src := newServices(t)
			seedCatalog(t, src)
			ctx := context.Background()
			data, err := src.data.Dump(ctx)
			if err != nil {
				t.Fatalf("Dump: %v", err)
			}

			dst := open(t)
			report, err := dst.data.Load(ctx, data)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if report.Users.Created != 2 || report.Genres.Created != 4 || report.Movies.Created != 2 {
				t.Fatalf("unexpected report %+v", report)
			}
			if report.Users.Skipped+report.Genres.Skipped+report.Movies.Skipped != 0 {
				t.Fatalf("nothing should be skipped on an empty store: %+v", report)
			}

			srcGenres, _ := src.genres.GetAll(ctx)
			dstGenres, _ := dst.genres.GetAll(ctx)
			if len(srcGenres) != len(dstGenres) {
				t.Fatalf("genre sets differ: %v vs %v", genreNames(srcGenres), genreNames(dstGenres))
			}
			for n := range genreNames(srcGenres) {
				if !genreNames(dstGenres)[n] {
					t.Fatalf("genre %q missing after load", n)
				}
			}
			inception, err := dst.movies.GetByTitle(ctx, "Inception")
			if err != nil {
				t.Fatalf("movie missing after load: %v", err)
			}
			if !inception.HasGenre("Sci-Fi") || inception.VoteCount != 2000 || inception.VoteAverage != 8.8 {
				t.Fatalf("unexpected movie %+v", inception)
			}

			// Хеш перенесен как есть: старый пароль подходит.
			if _, err := dst.auth.Authenticate(ctx, "user@b.com", "user-pw"); err != nil {
				t.Fatalf("password must survive the round trip: %v", err)
			}
			admin, err := dst.users.GetByEmail(ctx, "admin@b.com")
			if err != nil || !admin.IsAdmin() {
				t.Fatalf("admin after load: %+v, %v", admin, err)
			}
		})
	}
}

func TestLoadCollidingDumpCreatesNothing(t *testing.T) {
	s := newServices(t)
	seedCatalog(t, s)
	ctx := context.Background()

	doc := `{
		"users": [{"email": "user@b.com", "passwordHash": "x", "alreadyHashed": true, "isAdmin": false}],
		"genres": [{"name": "Documentary"}],
		"movies": [{"title": "Up", "description": "dup", "genres": ["Brand New"], "popularity": 1, "voteAverage": 1, "voteCount": 1}]
	}`
	report, err := s.data.Load(ctx, []byte(doc))
	if err != nil {
		t.Fatalf("Load must not abort on conflicts: %v", err)
	}
	want := domain.LoadReport{
		Users:  domain.LoadCount{Skipped: 1},
		Genres: domain.LoadCount{Skipped: 1},
		Movies: domain.LoadCount{Skipped: 1},
	}
	if *report != want {
		t.Fatalf("report = %+v, want %+v", *report, want)
	}
	if _, err := s.genres.GetByName(ctx, "Brand New"); !domain.IsNotFound(err) {
		t.Fatalf("skipped movie must not leave auto-created genres, got %v", err)
	}
}

func TestLoadContinuesAfterConflict(t *testing.T) {
	s := newServices(t)
	mustGenre(t, s, "Drama")
	doc := `{"genres":[{"name":"Drama"},{"name":"Comedy"}],"movies":[],"users":[]}`
	report, err := s.data.Load(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if report.Genres.Created != 1 || report.Genres.Skipped != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestLoadAbortsOnInvalidInput(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	if _, err := s.data.Load(ctx, []byte("{not json")); !domain.IsInvalid(err) {
		t.Fatalf("expected Invalid for malformed document, got %v", err)
	}

	doc := `{"users":[],"genres":[{"name":"Ok"},{"name":""},{"name":"Never"}],"movies":[{"title":"Late"}]}`
	report, err := s.data.Load(ctx, []byte(doc))
	if !domain.IsInvalid(err) || !strings.Contains(err.Error(), "genres[1]") {
		t.Fatalf("expected Invalid at genres[1], got %v", err)
	}
	if report.Genres.Created != 1 || report.Movies.Created != 0 {
		t.Fatalf("unexpected partial report %+v", report)
	}
	if _, err := s.genres.GetByName(ctx, "Never"); !domain.IsNotFound(err) {
		t.Fatalf("replay must stop at the failing record, got %v", err)
	}
}

func TestSaveRestoreListDumps(t *testing.T) {
	src := newServices(t)
	seedCatalog(t, src)
	ctx := context.Background()
	src.data.now = func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC) }

	info, err := src.data.Save(ctx)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if info.Key != "data_dump_2024_03_05-14_07_09.json" {
		t.Fatalf("unexpected filename %q", info.Key)
	}
	if _, err := src.data.Save(ctx); !domain.IsConflict(err) {
		t.Fatalf("expected Conflict for the same timestamp, got %v", err)
	}

	dumps, err := src.data.ListDumps(ctx)
	if err != nil || len(dumps) != 1 || dumps[0].Key != info.Key {
		t.Fatalf("ListDumps: %+v, %v", dumps, err)
	}

	// Восстановление из того же архива в пустую базу.
	dst := newServices(t)
	dst.data.archive = src.blobs
	report, err := dst.data.Restore(ctx, info.Key)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if report.Movies.Created != 2 {
		t.Fatalf("unexpected report %+v", report)
	}

	if _, err := dst.data.Restore(ctx, "missing.json"); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if _, err := dst.data.Restore(ctx, "../secrets.json"); !domain.IsInvalid(err) {
		t.Fatalf("expected Invalid, got %v", err)
	}
}
