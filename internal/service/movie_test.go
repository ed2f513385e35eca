package service

import (
	"context"
	"testing"

	"moviemetrics/internal/domain"
)

func TestCreateMovieAutoCreatesGenre(t *testing.T) {
	for name, open := range map[string]func(*testing.T) *services{"memory": newServices, "sqlite": newSQLiteServices} {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			m := mustMovie(t, s, MovieInput{Title: "Saw", GenreNames: []string{"Horror", "Horror"}})
			if len(m.Genres) != 1 || m.Genres[0].Name != "Horror" {
				t.Fatalf("unexpected genres %+v", m.Genres)
			}
			g, err := s.genres.GetByName(ctx, "Horror")
			if err != nil {
				t.Fatalf("expected auto-created genre: %v", err)
			}
			if m.Genres[0].ID != g.ID {
				t.Fatalf("movie genre id %d, genre id %d", m.Genres[0].ID, g.ID)
			}

			// Существующий жанр переиспользуется.
			m2 := mustMovie(t, s, MovieInput{Title: "Saw II", GenreNames: []string{"Horror", "Thriller"}})
			all, _ := s.genres.GetAll(ctx)
			if len(all) != 2 || len(m2.Genres) != 2 {
				t.Fatalf("expected 2 genres, got %+v and %+v", all, m2.Genres)
			}
		})
	}
}

func TestResolveGenresByIDIsStrict(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	action := mustGenre(t, s, "Action")

	_, err := s.movies.Create(ctx, MovieInput{Title: "Heat", Description: "Heist film", GenreIDs: []int64{action.ID, 99}})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if err.Error() != "Genre with id 99 not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if _, err := s.movies.GetByTitle(ctx, "Heat"); !domain.IsNotFound(err) {
		t.Fatalf("movie must not be stored, got %v", err)
	}

	genres, err := s.movies.ResolveGenresByID(ctx, []int64{action.ID, action.ID})
	if err != nil || len(genres) != 1 {
		t.Fatalf("ResolveGenresByID: %+v, %v", genres, err)
	}

	// Пустой, но не nil список ID выбирает строгий режим и дает фильм без жанров.
	m, err := s.movies.Create(ctx, MovieInput{Title: "Blank", Description: "No genres", GenreIDs: []int64{}, GenreNames: []string{"Ignored"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(m.Genres) != 0 {
		t.Fatalf("expected no genres, got %+v", m.Genres)
	}
	if _, err := s.genres.GetByName(ctx, "Ignored"); !domain.IsNotFound(err) {
		t.Fatalf("by-id resolution must not create genres, got %v", err)
	}
}

func TestResolveGenresByName(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	mustGenre(t, s, "Drama")

	genres, err := s.movies.ResolveGenresByName(ctx, []string{"Drama", "Comedy", "Drama"})
	if err != nil {
		t.Fatalf("ResolveGenresByName: %v", err)
	}
	if len(genres) != 2 {
		t.Fatalf("expected 2 genres, got %+v", genres)
	}
	all, _ := s.genres.GetAll(ctx)
	if !genreNames(all)["Comedy"] {
		t.Fatalf("expected Comedy to be created, got %+v", all)
	}
}

func TestUpdateMovieReplacesGenres(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	m := mustMovie(t, s, MovieInput{Title: "Alien", GenreNames: []string{"Horror", "Sci-Fi"}, VoteCount: 10})

	updated, err := s.movies.Update(ctx, m.ID, MovieInput{Title: "Alien", Description: "Director's cut", GenreNames: []string{"Thriller"}, VoteCount: 20})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != m.ID || updated.VoteCount != 20 || updated.Description != "Director's cut" {
		t.Fatalf("unexpected movie %+v", updated)
	}
	if len(updated.Genres) != 1 || !updated.HasGenre("Thriller") {
		t.Fatalf("genres must be replaced, got %+v", updated.Genres)
	}
}

func TestDeleteGenreDetachesFromMovies(t *testing.T) {
	for name, open := range map[string]func(*testing.T) *services{"memory": newServices, "sqlite": newSQLiteServices} {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			m := mustMovie(t, s, MovieInput{Title: "Scream", GenreNames: []string{"Horror", "Comedy"}})
			horror, _ := s.genres.GetByName(ctx, "Horror")

			byGenre, err := s.genres.Movies(ctx, horror.ID)
			if err != nil || len(byGenre) != 1 {
				t.Fatalf("Movies(horror): %+v, %v", byGenre, err)
			}

			deleted, err := s.genres.Delete(ctx, horror.ID)
			if err != nil {
				t.Fatalf("delete: %v", err)
			}
			if deleted.Name != "Horror" {
				t.Fatalf("unexpected snapshot %+v", deleted)
			}
			got, err := s.movies.GetByID(ctx, m.ID)
			if err != nil {
				t.Fatalf("get movie: %v", err)
			}
			if got.HasGenre("Horror") || !got.HasGenre("Comedy") {
				t.Fatalf("expected only Comedy, got %+v", got.Genres)
			}
			if _, err := s.genres.Delete(ctx, horror.ID); !domain.IsNotFound(err) {
				t.Fatalf("expected NotFound, got %v", err)
			}
		})
	}
}

func TestListMoviesWithFilter(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	mustMovie(t, s, MovieInput{Title: "Low", GenreNames: []string{"Drama"}, VoteCount: 10, VoteAverage: 5, Popularity: 1})
	mustMovie(t, s, MovieInput{Title: "Mid", GenreNames: []string{"Comedy"}, VoteCount: 100, VoteAverage: 7, Popularity: 50})
	mustMovie(t, s, MovieInput{Title: "High", GenreNames: []string{"Drama", "War"}, VoteCount: 1000, VoteAverage: 9, Popularity: 99})

	i64 := func(v int64) *int64 { return &v }
	f64 := func(v float64) *float64 { return &v }
	tests := []struct {
		name   string
		filter MovieFilter
		want   []string
	}{
		{"no filter", MovieFilter{}, []string{"Low", "Mid", "High"}},
		{"min vote count", MovieFilter{MinVoteCount: i64(100)}, []string{"Mid", "High"}},
		{"vote average range", MovieFilter{MinVoteAverage: f64(6), MaxVoteAverage: f64(8)}, []string{"Mid"}},
		{"max popularity", MovieFilter{MaxPopularity: f64(50)}, []string{"Low", "Mid"}},
		{"genre any match", MovieFilter{Genres: []string{"War", "Comedy"}}, []string{"Mid", "High"}},
		{"combined", MovieFilter{Genres: []string{"Drama"}, MinPopularity: f64(10)}, []string{"High"}},
		{"nothing", MovieFilter{Genres: []string{"Western"}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.movies.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d movies, want %v", len(got), tt.want)
			}
			for i, m := range got {
				if m.Title != tt.want[i] {
					t.Fatalf("got[%d] = %q, want %q", i, m.Title, tt.want[i])
				}
			}
		})
	}
}

func TestCompareMovies(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	mustMovie(t, s, MovieInput{Title: "A", VoteCount: 300, VoteAverage: 8.5, Popularity: 40})
	mustMovie(t, s, MovieInput{Title: "B", VoteCount: 100, VoteAverage: 6.5, Popularity: 50})

	cmp, err := s.movies.Compare(ctx, "A", "B")
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if cmp.ComparedMovieTitle != "A" || cmp.ComparedToMovieTitle != "B" {
		t.Fatalf("unexpected titles %+v", cmp)
	}
	if cmp.VoteCountDifference != 200 || cmp.VoteAverageDifference != 2 || cmp.PopularityDifference != -10 {
		t.Fatalf("unexpected differences %+v", cmp)
	}
	if _, err := s.movies.Compare(ctx, "A", "Missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
