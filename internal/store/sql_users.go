// internal/store/sql_users.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"moviemetrics/internal/domain"
)

type sqlUsers struct{ sqlConn }

// Create создает нового пользователя в базе данных.
func (r *sqlUsers) Create(ctx context.Context, user *domain.User) error {
	query := r.q(`INSERT INTO users (email, password_hash, role) VALUES (?, ?, ?) RETURNING id`)

	r.logger.DebugContext(ctx, "Executing Create user query", slog.String("email", user.Email))
	if err := sqlx.GetContext(ctx, r.ext, &user.ID, query, user.Email, user.PasswordHash, string(user.Role)); err != nil {
		if isUniqueViolation(err) {
			r.logger.WarnContext(ctx, "User already exists (unique constraint violation in DB)", slog.String("email", user.Email))
			return ErrAlreadyExists
		}
		r.logger.ErrorContext(ctx, "Failed to create user in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create user: %w", err)
	}
	r.logger.InfoContext(ctx, "User created successfully in DB", slog.Int64("userID", user.ID))
	return nil
}

func (r *sqlUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `SELECT id, email, password_hash, role FROM users WHERE id = ?`, id)
}

// GetByKey ищет пользователя по email (точное совпадение).
func (r *sqlUsers) GetByKey(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT id, email, password_hash, role FROM users WHERE email = ?`, email)
}

func (r *sqlUsers) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := sqlx.GetContext(ctx, r.ext, &user, r.q(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.DebugContext(ctx, "User not found in DB", slog.Any("key", arg))
			return nil, ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get user from DB", slog.Any("key", arg), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *sqlUsers) List(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	if err := sqlx.SelectContext(ctx, r.ext, &users, `SELECT id, email, password_hash, role FROM users ORDER BY id`); err != nil {
		r.logger.ErrorContext(ctx, "Failed to list users from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *sqlUsers) Update(ctx context.Context, user *domain.User) error {
	query := r.q(`UPDATE users SET email = ?, password_hash = ?, role = ? WHERE id = ?`)
	res, err := r.ext.ExecContext(ctx, query, user.Email, user.PasswordHash, string(user.Role), user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.WarnContext(ctx, "Update failed: email already exists (DB constraint)", slog.Int64("userID", user.ID))
			return ErrAlreadyExists
		}
		r.logger.ErrorContext(ctx, "Failed to update user in DB", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update user: %w", err)
	}
	if err := rowsAffected(res); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "User updated successfully in DB", slog.Int64("userID", user.ID))
	return nil
}

func (r *sqlUsers) Delete(ctx context.Context, id int64) error {
	res, err := r.ext.ExecContext(ctx, r.q(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete user in DB", slog.Int64("userID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return rowsAffected(res)
}
