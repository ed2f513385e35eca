// internal/store/sql.go
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // драйвер "pgx"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // драйвер "postgres" и его ошибки
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Поддерживаемые драйверы SQL
const (
	DriverPostgres = "postgres" // lib/pq
	DriverPgx      = "pgx"      // jackc/pgx через database/sql
	DriverSQLite   = "sqlite"   // modernc.org/sqlite, без cgo
)

func init() {
	// modernc регистрируется как "sqlite", а sqlx по умолчанию знает только "sqlite3".
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// SQLStore реализует Store поверх database/sql через sqlx.
// Запросы пишутся с плейсхолдерами "?" и переводятся под драйвер через Rebind.
type SQLStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSQLStore подключается к базе, проверяет соединение и создает схему, если ее нет.
func NewSQLStore(ctx context.Context, driver, dsn string, logger *slog.Logger) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("DB connection string (dsn) cannot be empty")
	}
	switch driver {
	case DriverPostgres, DriverPgx, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	logger.Info("Connecting to SQL database...", slog.String("driver", driver))
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		logger.Error("Failed to connect to SQL database", slog.String("driver", driver), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// Одно соединение: in-memory база живет внутри соединения, а запись в SQLite все равно последовательна.
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Successfully connected to SQL database.", slog.String("driver", driver))
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	idColumn := "BIGSERIAL PRIMARY KEY"
	if s.db.DriverName() == DriverSQLite {
		idColumn = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS genres (
			id ` + idColumn + `,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS movies (
			id ` + idColumn + `,
			title TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			popularity DOUBLE PRECISION NOT NULL DEFAULT 0,
			vote_average DOUBLE PRECISION NOT NULL DEFAULT 0,
			vote_count BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS movie_genres (
			movie_id BIGINT NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
			genre_id BIGINT NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
			PRIMARY KEY (movie_id, genre_id)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id ` + idColumn + `,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'USER'
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.logger.Error("Failed to apply schema", slog.String("error", err.Error()))
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Close закрывает соединение с базой.
func (s *SQLStore) Close() error {
	s.logger.Info("Closing SQL database connection...")
	return s.db.Close()
}

func (s *SQLStore) Genres() GenreRepository {
	return &sqlGenres{sqlConn{ext: s.db, db: s.db, logger: s.logger}}
}

func (s *SQLStore) Movies() MovieRepository {
	return &sqlMovies{sqlConn{ext: s.db, db: s.db, logger: s.logger}}
}

func (s *SQLStore) Users() UserRepository {
	return &sqlUsers{sqlConn{ext: s.db, db: s.db, logger: s.logger}}
}

// RunInTx открывает транзакцию, выполняет fn и фиксирует ее, если fn не вернула ошибку.
func (s *SQLStore) RunInTx(ctx context.Context, fn func(tx Tx) error) (retErr error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if retErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.ErrorContext(ctx, "Failed to rollback transaction", slog.String("error", rbErr.Error()))
			}
		}
	}()

	if err := fn(&sqlTx{conn: sqlConn{ext: tx, logger: s.logger}}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type sqlTx struct {
	conn sqlConn
}

func (t *sqlTx) Genres() GenreRepository { return &sqlGenres{t.conn} }
func (t *sqlTx) Movies() MovieRepository { return &sqlMovies{t.conn} }
func (t *sqlTx) Users() UserRepository   { return &sqlUsers{t.conn} }

// sqlConn общий исполнитель запросов для репозиториев. db != nil, только если мы вне транзакции.
type sqlConn struct {
	ext    sqlx.ExtContext
	db     *sqlx.DB
	logger *slog.Logger
}

func (c sqlConn) q(query string) string {
	return c.ext.Rebind(query)
}

// atomic выполняет несколько запросов атомарно: вне транзакции открывает свою.
func (c sqlConn) atomic(ctx context.Context, fn func(ext sqlx.ExtContext) error) (retErr error) {
	if c.db == nil {
		return fn(c.ext)
	}
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// isUniqueViolation распознает нарушение уникальности для всех поддерживаемых драйверов.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Код '23505' соответствует unique_violation в PostgreSQL
		return pqErr.Code == "23505"
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return true
		}
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE")
	}
	return false
}

// rowsAffected переводит 0 затронутых строк в ErrNotFound.
func rowsAffected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
