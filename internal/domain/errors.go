// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Kind класс бизнес-ошибки
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindInvalid      Kind = "invalid"
)

// Error единая бизнес-ошибка сервиса. Entity/Field/Value заполняются для NotFound и Conflict.
type Error struct {
	Kind   Kind
	Entity string
	Field  string
	Value  string
	Msg    string
}

func (e *Error) Error() string {
	return e.Msg
}

// NotFound: "<Entity> with <field> <value> not found"
func NotFound(entity, field string, value any) *Error {
	v := fmt.Sprint(value)
	return &Error{
		Kind:   KindNotFound,
		Entity: entity,
		Field:  field,
		Value:  v,
		Msg:    fmt.Sprintf("%s with %s %s not found", entity, strings.ToLower(field), v),
	}
}

// Conflict: "<Field> already taken: <value>"
func Conflict(entity, field string, value any) *Error {
	v := fmt.Sprint(value)
	return &Error{
		Kind:   KindConflict,
		Entity: entity,
		Field:  field,
		Value:  v,
		Msg:    fmt.Sprintf("%s already taken: %s", field, v),
	}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

func Invalid(msg string) *Error {
	return &Error{Kind: KindInvalid, Msg: msg}
}

// KindOf возвращает класс ошибки или "" если это не *Error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool     { return KindOf(err) == KindConflict }
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }
func IsInvalid(err error) bool      { return KindOf(err) == KindInvalid }
