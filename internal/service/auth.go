// internal/service/auth.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"moviemetrics/internal/domain"
	"moviemetrics/pkg/auth"
)

// ErrInvalidCredentials общая ошибка входа: неизвестный email и неверный пароль
// не различаются для вызывающего, причина пишется только в лог.
var ErrInvalidCredentials = domain.Unauthorized("invalid email or password")

// AuthService регистрация и вход пользователей.
type AuthService struct {
	users  *UserService
	hasher auth.Hasher
	tokens auth.TokenManager
	logger *slog.Logger
}

func NewAuthService(users *UserService, hasher auth.Hasher, tokens auth.TokenManager, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, logger: logger}
}

// Register создает пользователя с ролью USER. Занятый email дает Conflict.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	return s.users.Create(ctx, UserInput{Email: email, Password: password})
}

// Authenticate проверяет email и пароль и возвращает пользователя.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			s.logger.WarnContext(ctx, "Login attempt for unknown email", slog.String("email", email))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.WarnContext(ctx, "Login attempt with wrong password", slog.Int64("userID", user.ID))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Issue выдает токен для пользователя.
func (s *AuthService) Issue(ctx context.Context, user *domain.User) (*domain.LoginResponse, error) {
	token, err := s.tokens.Generate(auth.Principal{UserID: user.ID, Email: user.Email, Role: string(user.Role)})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate token", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &domain.LoginResponse{User: user, Token: token}, nil
}

// Login = Authenticate + выдача токена.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "User logged in", slog.Int64("userID", user.ID))
	return s.Issue(ctx, user)
}

// EnsureAdmin создает администратора, если пользователя с таким email еще нет.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if !user.IsAdmin() {
			s.logger.WarnContext(ctx, "Bootstrap admin email belongs to a non-admin user", slog.String("email", email))
		}
		return user, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}
	return s.users.Create(ctx, UserInput{Email: email, Password: password, IsAdmin: true})
}
