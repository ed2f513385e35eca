// internal/service/user.go
package service

import (
	"context"
	"errors"
	"log/slog"

	"moviemetrics/internal/domain"
	"moviemetrics/internal/store"
	"moviemetrics/pkg/auth"
)

// UserInput данные для создания или замены пользователя.
// AlreadyHashed == true: Password уже хеш и сохраняется без повторного хеширования.
type UserInput struct {
	Email         string
	Password      string
	AlreadyHashed bool
	IsAdmin       bool
}

// UserService операции над пользователями с проверкой уникальности email.
type UserService struct {
	store  store.Store
	hasher auth.Hasher
	logger *slog.Logger
}

func NewUserService(s store.Store, hasher auth.Hasher, logger *slog.Logger) *UserService {
	return &UserService{store: s, hasher: hasher, logger: logger}
}

// user строит запись пользователя. Хеширование выполняется до транзакции: bcrypt медленный.
func (s *UserService) user(ctx context.Context, in UserInput) (*domain.User, error) {
	hash := in.Password
	if !in.AlreadyHashed {
		var err error
		if hash, err = s.hasher.Hash(in.Password); err != nil {
			if errors.Is(err, auth.ErrPasswordTooLong) {
				return nil, domain.Invalid("password must be at most 72 bytes")
			}
			s.logger.ErrorContext(ctx, "Failed to hash password", slog.String("error", err.Error()))
			return nil, err
		}
	} else if !auth.IsBcryptHash(hash) {
		s.logger.WarnContext(ctx, "Stored password marked as hashed is not a bcrypt hash", slog.String("email", in.Email))
	}
	role := domain.RoleUser
	if in.IsAdmin {
		role = domain.RoleAdmin
	}
	return &domain.User{Email: in.Email, PasswordHash: hash, Role: role}, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*domain.User, error) {
	candidate, err := s.user(ctx, in)
	if err != nil {
		return nil, err
	}
	var user *domain.User
	err = s.store.RunInTx(ctx, func(tx store.Tx) error {
		user, err = create(ctx, tx.Users(), userEntity, candidate)
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "User creation failed", slog.String("email", in.Email), slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.InfoContext(ctx, "User created", slog.Int64("userID", user.ID), slog.String("role", string(user.Role)))
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return getByID(ctx, s.store.Users(), userEntity, id)
}

// GetByEmail ищет пользователя по точному совпадению email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return getByKey(ctx, s.store.Users(), userEntity, email)
}

func (s *UserService) GetAll(ctx context.Context) ([]*domain.User, error) {
	return getAll(ctx, s.store.Users())
}

func (s *UserService) Update(ctx context.Context, id int64, in UserInput) (*domain.User, error) {
	candidate, err := s.user(ctx, in)
	if err != nil {
		return nil, err
	}
	var user *domain.User
	err = s.store.RunInTx(ctx, func(tx store.Tx) error {
		user, err = update(ctx, tx.Users(), userEntity, id, candidate)
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "User update failed", slog.Int64("userID", id), slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.InfoContext(ctx, "User updated", slog.Int64("userID", id))
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		var err error
		user, err = remove(ctx, tx.Users(), userEntity, id)
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "User deletion failed", slog.Int64("userID", id), slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.InfoContext(ctx, "User deleted", slog.Int64("userID", id))
	return user, nil
}
