// internal/service/data.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"moviemetrics/internal/blob"
	"moviemetrics/internal/domain"
)

// DumpPrefix каталог архива, в котором лежат сохраненные дампы.
const DumpPrefix = "data_dumps/"

const dumpTimeLayout = "2006_01_02-15_04_05"

// DumpFileName возвращает имя файла дампа, снятого в момент t.
func DumpFileName(t time.Time) string {
	return "data_dump_" + t.Format(dumpTimeLayout) + ".json"
}

// DataService выгрузка и загрузка всей базы одним JSON документом.
type DataService struct {
	genres    *GenreService
	movies    *MovieService
	users     *UserService
	archive   blob.Store
	validator *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

// NewDataService создает сервис. archive может быть nil: тогда доступны только Dump и Load.
func NewDataService(genres *GenreService, movies *MovieService, users *UserService, archive blob.Store, v *validator.Validate, logger *slog.Logger) *DataService {
	return &DataService{
		genres:    genres,
		movies:    movies,
		users:     users,
		archive:   archive,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// Dump сериализует всех пользователей, жанры и фильмы.
// Фильмы ссылаются на жанры по именам, ID в дамп не попадают.
func (s *DataService) Dump(ctx context.Context) ([]byte, error) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("dump users: %w", err)
	}
	genres, err := s.genres.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("dump genres: %w", err)
	}
	movies, err := s.movies.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("dump movies: %w", err)
	}

	doc := domain.DataDump{
		Genres: make([]domain.GenreRecord, 0, len(genres)),
		Movies: make([]domain.MovieRecord, 0, len(movies)),
		Users:  make([]domain.UserRecord, 0, len(users)),
	}
	for _, g := range genres {
		doc.Genres = append(doc.Genres, domain.GenreRecord{Name: g.Name})
	}
	for _, m := range movies {
		names := make([]string, 0, len(m.Genres))
		for _, g := range m.Genres {
			names = append(names, g.Name)
		}
		sort.Strings(names)
		doc.Movies = append(doc.Movies, domain.MovieRecord{
			Title:       m.Title,
			Description: m.Description,
			Genres:      names,
			Popularity:  m.Popularity,
			VoteAverage: m.VoteAverage,
			VoteCount:   m.VoteCount,
		})
	}
	for _, u := range users {
		doc.Users = append(doc.Users, domain.UserRecord{
			Email:         u.Email,
			PasswordHash:  u.PasswordHash,
			AlreadyHashed: true,
			IsAdmin:       u.IsAdmin(),
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode data dump: %w", err)
	}
	s.logger.InfoContext(ctx, "Data dump created",
		slog.Int("users", len(doc.Users)), slog.Int("genres", len(doc.Genres)), slog.Int("movies", len(doc.Movies)))
	return data, nil
}

// replay создает записи по одной. Conflict пропускается, любая другая ошибка прерывает загрузку.
func replay[R any](ctx context.Context, s *DataService, kind string, records []R, count *domain.LoadCount, create func(R) error) error {
	for i, rec := range records {
		if err := s.validator.StructCtx(ctx, rec); err != nil {
			return domain.Invalid(fmt.Sprintf("%s[%d]: %v", kind, i, err))
		}
		err := create(rec)
		switch {
		case err == nil:
			count.Created++
		case domain.IsConflict(err):
			count.Skipped++
			s.logger.WarnContext(ctx, "Skipping conflicting record during data load",
				slog.String("kind", kind), slog.Int("index", i), slog.String("error", err.Error()))
		default:
			return fmt.Errorf("%s[%d]: %w", kind, i, err)
		}
	}
	return nil
}

// Load импортирует дамп: сначала пользователи, затем жанры, затем фильмы.
// Отчет возвращается и при ошибке: в нем то, что успело загрузиться.
func (s *DataService) Load(ctx context.Context, data []byte) (*domain.LoadReport, error) {
	var doc domain.DataDump
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, domain.Invalid("malformed data dump: " + err.Error())
	}

	report := &domain.LoadReport{}
	err := replay(ctx, s, "users", doc.Users, &report.Users, func(rec domain.UserRecord) error {
		_, err := s.users.Create(ctx, UserInput{
			Email:         rec.Email,
			Password:      rec.PasswordHash,
			AlreadyHashed: rec.AlreadyHashed,
			IsAdmin:       rec.IsAdmin,
		})
		return err
	})
	if err == nil {
		err = replay(ctx, s, "genres", doc.Genres, &report.Genres, func(rec domain.GenreRecord) error {
			_, err := s.genres.Create(ctx, rec.Name)
			return err
		})
	}
	if err == nil {
		err = replay(ctx, s, "movies", doc.Movies, &report.Movies, func(rec domain.MovieRecord) error {
			_, err := s.movies.Create(ctx, MovieInput{
				Title:       rec.Title,
				Description: rec.Description,
				Popularity:  rec.Popularity,
				VoteAverage: rec.VoteAverage,
				VoteCount:   rec.VoteCount,
				GenreNames:  rec.Genres,
			})
			return err
		})
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Data load aborted", slog.String("error", err.Error()))
		return report, err
	}
	s.logger.InfoContext(ctx, "Data load finished", slog.Any("report", report))
	return report, nil
}

// Save снимает дамп и кладет его в архив под именем с текущим временем.
func (s *DataService) Save(ctx context.Context) (blob.Info, error) {
	if s.archive == nil {
		return blob.Info{}, errors.New("dump archive is not configured")
	}
	data, err := s.Dump(ctx)
	if err != nil {
		return blob.Info{}, err
	}
	name := DumpFileName(s.now())
	info, err := s.archive.Put(ctx, DumpPrefix+name, bytes.NewReader(data), blob.PutOptions{ContentType: "application/json"})
	if err != nil {
		if errors.Is(err, blob.ErrExists) {
			return blob.Info{}, domain.Conflict("Dump", "Filename", name)
		}
		s.logger.ErrorContext(ctx, "Failed to save data dump", slog.String("filename", name), slog.String("error", err.Error()))
		return blob.Info{}, fmt.Errorf("save data dump: %w", err)
	}
	info.Key = name
	s.logger.InfoContext(ctx, "Data dump saved", slog.String("filename", name), slog.Int64("size", info.Size))
	return info, nil
}

// Restore загружает сохраненный дамп по имени файла.
func (s *DataService) Restore(ctx context.Context, filename string) (*domain.LoadReport, error) {
	if s.archive == nil {
		return nil, errors.New("dump archive is not configured")
	}
	if strings.Contains(filename, "/") {
		return nil, domain.Invalid("invalid dump filename: " + filename)
	}
	_, rc, err := s.archive.Get(ctx, DumpPrefix+filename)
	switch {
	case errors.Is(err, blob.ErrNotFound):
		return nil, domain.NotFound("Dump", "filename", filename)
	case errors.Is(err, blob.ErrInvalidKey):
		return nil, domain.Invalid("invalid dump filename: " + filename)
	case err != nil:
		return nil, fmt.Errorf("open data dump %s: %w", filename, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read data dump %s: %w", filename, err)
	}
	s.logger.InfoContext(ctx, "Restoring data dump", slog.String("filename", filename))
	return s.Load(ctx, data)
}

// ListDumps перечисляет сохраненные дампы. Key в результате - имя файла без каталога.
func (s *DataService) ListDumps(ctx context.Context) ([]blob.Info, error) {
	if s.archive == nil {
		return nil, errors.New("dump archive is not configured")
	}
	infos, err := s.archive.List(ctx, DumpPrefix)
	if err != nil {
		return nil, fmt.Errorf("list data dumps: %w", err)
	}
	for i := range infos {
		infos[i].Key = strings.TrimPrefix(infos[i].Key, DumpPrefix)
	}
	return infos, nil
}
