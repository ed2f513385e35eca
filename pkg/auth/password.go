// pkg/auth/password.go
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes предел длины пароля для bcrypt.
const MaxPasswordBytes = 72

// ErrPasswordTooLong пароль длиннее MaxPasswordBytes байт.
var ErrPasswordTooLong = errors.New("password is longer than 72 bytes")

// Hasher хеширует пароли и проверяет их по сохраненному хешу.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hashedPassword string) bool
}

// BcryptHasher реализует Hasher через bcrypt.
// Cost == 0 означает bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher создает хешер с заданной стоимостью, проверяя ее границы.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{Cost: cost}, nil
}

// Hash генерирует bcrypt хеш для заданного пароля.
func (h *BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedPassword), nil
}

// Verify сравнивает пароль с существующим хешем.
// Битый хеш считается несовпадением.
func (h *BcryptHasher) Verify(password, hashedPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// IsBcryptHash сообщает, похожа ли строка на bcrypt хеш.
func IsBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
