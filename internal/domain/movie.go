// internal/domain/movie.go
package domain

// Movie представляет основную доменную модель фильма.
// Genres - множество жанров: без повторяющихся ID, порядок не важен.
type Movie struct {
	ID          int64   `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Description string  `json:"description" db:"description"`
	Popularity  float64 `json:"popularity" db:"popularity"`
	VoteAverage float64 `json:"voteAverage" db:"vote_average"`
	VoteCount   int64   `json:"voteCount" db:"vote_count"`
	Genres      []Genre `json:"genres" db:"-"`
}

// GenreIDs возвращает идентификаторы жанров фильма.
func (m *Movie) GenreIDs() []int64 {
	ids := make([]int64, 0, len(m.Genres))
	for _, g := range m.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

// HasGenre проверяет, есть ли у фильма жанр с таким именем.
func (m *Movie) HasGenre(name string) bool {
	for _, g := range m.Genres {
		if g.Name == name {
			return true
		}
	}
	return false
}

// MovieRequest определяет тело запроса для создания и полной замены фильма.
// Жанры передаются либо именами (Genres), либо идентификаторами (GenreIDs).
// Передавать оба списка сразу нельзя.
type MovieRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=255"`
	Description string   `json:"description" validate:"required,min=10"`
	Genres      []string `json:"genres,omitempty" validate:"omitempty,excluded_with=GenreIDs,dive,min=2,max=100"`
	GenreIDs    []int64  `json:"genreIds,omitempty" validate:"omitempty,dive,gt=0"`
	Popularity  float64  `json:"popularity" validate:"gte=0"`
	VoteAverage float64  `json:"voteAverage" validate:"gte=0,lte=10"`
	VoteCount   int64    `json:"voteCount" validate:"gte=0"`
}

// MovieComparison разница показателей двух фильмов (первый минус второй).
type MovieComparison struct {
	ComparedMovieTitle    string  `json:"comparedMovieTitle"`
	ComparedToMovieTitle  string  `json:"comparedToMovieTitle"`
	VoteCountDifference   int64   `json:"voteCountDifference"`
	VoteAverageDifference float64 `json:"voteAverageDifference"`
	PopularityDifference  float64 `json:"popularityDifference"`
}

// MoviePatchRequest частичное обновление фильма (HTTP PATCH). Nil поле не меняется.
// Genres и GenreIDs, если переданы, заменяют набор жанров целиком.
type MoviePatchRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=10"`
	Genres      []string `json:"genres,omitempty" validate:"omitempty,excluded_with=GenreIDs,dive,min=2,max=100"`
	GenreIDs    []int64  `json:"genreIds,omitempty" validate:"omitempty,dive,gt=0"`
	Popularity  *float64 `json:"popularity,omitempty" validate:"omitempty,gte=0"`
	VoteAverage *float64 `json:"voteAverage,omitempty" validate:"omitempty,gte=0,lte=10"`
	VoteCount   *int64   `json:"voteCount,omitempty" validate:"omitempty,gte=0"`
}
