// internal/domain/genre.go
package domain

// Genre представляет жанр фильма. Name уникален среди всех жанров.
type Genre struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// GenreRequest тело запроса на создание/обновление жанра (HTTP)
type GenreRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}
