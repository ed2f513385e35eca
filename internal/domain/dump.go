// internal/domain/dump.go
package domain

// DataDump документ полного дампа базы. Имена полей являются частью формата
// сохраненных файлов и не должны меняться.
type DataDump struct {
	Genres []GenreRecord `json:"genres"`
	Movies []MovieRecord `json:"movies"`
	Users  []UserRecord  `json:"users"`
}

// GenreRecord жанр в дампе
type GenreRecord struct {
	Name string `json:"name" validate:"required"`
}

// MovieRecord фильм в дампе. Жанры указываются именами, а не ID,
// чтобы дамп не зависел от нумерации в конкретной базе.
type MovieRecord struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Genres      []string `json:"genres" validate:"dive,required"`
	Popularity  float64  `json:"popularity"`
	VoteAverage float64  `json:"voteAverage"`
	VoteCount   int64    `json:"voteCount"`
}

// UserRecord пользователь в дампе. При экспорте PasswordHash всегда хеш и AlreadyHashed == true.
type UserRecord struct {
	Email         string `json:"email" validate:"required"`
	PasswordHash  string `json:"passwordHash" validate:"required"`
	AlreadyHashed bool   `json:"alreadyHashed"`
	IsAdmin       bool   `json:"isAdmin"`
}

// LoadReport итог импорта дампа по каждому типу записей.
type LoadReport struct {
	Users  LoadCount `json:"users"`
	Genres LoadCount `json:"genres"`
	Movies LoadCount `json:"movies"`
}

// LoadCount сколько записей создано и сколько пропущено из-за конфликта ключа.
type LoadCount struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// FilenameRequest тело запроса загрузки сохраненного дампа (HTTP)
type FilenameRequest struct {
	Filename string `json:"filename" validate:"required,max=255"`
}
