// internal/domain/user.go
package domain

// Role роль пользователя
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User представляет модель пользователя. Email уникален и сравнивается как есть (с учетом регистра).
type User struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"` // Не отдаем хеш пароля в JSON
	Role         Role   `json:"role" db:"role"`
}

// IsAdmin сообщает, есть ли у пользователя роль ADMIN.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RegisterRequest для регистрации нового пользователя (HTTP)
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest для входа пользователя (HTTP)
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse для ответа при успешном входе или регистрации (HTTP)
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UserRequest тело запроса администратора на создание/обновление пользователя (HTTP).
// Если AlreadyHashed == true, Password уже является хешем и сохраняется как есть.
type UserRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6,max=72"`
	AlreadyHashed bool   `json:"alreadyHashed"`
	IsAdmin       bool   `json:"isAdmin"`
}

// UserPatchRequest частичное обновление пользователя администратором (HTTP PATCH).
type UserPatchRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
	IsAdmin  *bool   `json:"isAdmin,omitempty"`
}
