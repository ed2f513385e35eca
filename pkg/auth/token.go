// pkg/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer записывается в поле iss каждого токена и проверяется при валидации.
const Issuer = "moviemetrics"

// Principal данные пользователя, от имени которого выдается токен.
type Principal struct {
	UserID int64
	Email  string
	Role   string
}

// TokenManager предоставляет методы для генерации и валидации JWT токенов.
type TokenManager interface {
	Generate(p Principal) (string, error)
	Validate(tokenString string) (*Claims, error)
}

// jwtManager реализует TokenManager.
type jwtManager struct {
	secretKey     []byte        // Секретный ключ для подписи токенов
	tokenDuration time.Duration // Длительность жизни токена
	now           func() time.Time
}

// Claims определяет структуру данных, хранимых в JWT. Email лежит в Subject.
type Claims struct {
	UserID int64  `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Principal восстанавливает владельца токена.
func (c *Claims) Principal() Principal {
	return Principal{UserID: c.UserID, Email: c.Subject, Role: c.Role}
}

// NewTokenManager создает новый экземпляр jwtManager.
// Для HS256 рекомендуется ключ не короче 32 байт; более короткий только логируется.
func NewTokenManager(secretKey string, tokenDuration time.Duration, logger *slog.Logger) (TokenManager, error) {
	if secretKey == "" {
		return nil, errors.New("JWT secret key cannot be empty")
	}
	if tokenDuration <= 0 {
		return nil, fmt.Errorf("JWT token duration must be positive, got %s", tokenDuration)
	}
	if len(secretKey) < 32 && logger != nil {
		logger.Warn("JWT secret key is short. For production, use a key of at least 32 bytes for HS256.")
	}
	return &jwtManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}, nil
}

// Generate создает новый JWT токен для указанного пользователя.
func (m *jwtManager) Generate(p Principal) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID: p.UserID,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate проверяет JWT токен и возвращает извлеченные из него Claims.
func (m *jwtManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	}, jwt.WithIssuer(Issuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
