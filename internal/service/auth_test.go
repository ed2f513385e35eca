package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"moviemetrics/internal/domain"
)

func TestRegisterAuthenticateScenario(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	u, err := s.auth.Register(ctx, "a@b.com", "pw-secret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != domain.RoleUser {
		t.Fatalf("expected role USER, got %s", u.Role)
	}
	if u.PasswordHash == "pw-secret" {
		t.Fatal("password must be stored hashed")
	}

	got, err := s.auth.Authenticate(ctx, "a@b.com", "pw-secret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected id %d, got %d", u.ID, got.ID)
	}

	_, err = s.auth.Authenticate(ctx, "a@b.com", "wrong")
	if !domain.IsUnauthorized(err) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	_, errUnknown := s.auth.Authenticate(ctx, "nobody@b.com", "pw-secret")
	if !errors.Is(errUnknown, ErrInvalidCredentials) || errUnknown.Error() != err.Error() {
		t.Fatalf("unknown email and wrong password must fail the same way: %v vs %v", errUnknown, err)
	}

	if _, err := s.auth.Register(ctx, "a@b.com", "other-pw"); !domain.IsConflict(err) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	if _, err := s.auth.Register(ctx, "a@b.com", "pw-secret"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	resp, err := s.auth.Login(ctx, "a@b.com", "pw-secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token == "" || resp.User.Email != "a@b.com" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if _, err := s.auth.Login(ctx, "a@b.com", "nope"); !domain.IsUnauthorized(err) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	admin, err := s.auth.EnsureAdmin(ctx, "root@b.com", "root-pw")
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if !admin.IsAdmin() {
		t.Fatalf("expected ADMIN, got %s", admin.Role)
	}
	again, err := s.auth.EnsureAdmin(ctx, "root@b.com", "other")
	if err != nil || again.ID != admin.ID {
		t.Fatalf("second EnsureAdmin: %+v, %v", again, err)
	}
	all, _ := s.users.GetAll(ctx)
	if len(all) != 1 {
		t.Fatalf("expected a single user, got %d", len(all))
	}
}

func TestUserAlreadyHashedStoredVerbatim(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	u, err := s.users.Create(ctx, UserInput{Email: "h@b.com", Password: "$2a$04$abcdefghijklmnopqrstuu", AlreadyHashed: true, IsAdmin: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.PasswordHash != "$2a$04$abcdefghijklmnopqrstuu" || !u.IsAdmin() {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestEmailMatchingIsCaseSensitive(t *testing.T) {
	stores := map[string]func(*testing.T) *services{
		"memory": newServices,
		"sqlite": newSQLiteServices,
	}
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			lower, err := s.auth.Register(ctx, "a@b.com", "pw-secret")
			if err != nil {
				t.Fatalf("Register a@b.com: %v", err)
			}
			upper, err := s.auth.Register(ctx, "A@b.com", "pw-secret")
			if err != nil {
				t.Fatalf("A@b.com must be a distinct user: %v", err)
			}
			if upper.ID == lower.ID {
				t.Fatalf("expected distinct ids, both %d", upper.ID)
			}
			if _, err := s.users.GetByEmail(ctx, "A@B.COM"); !domain.IsNotFound(err) {
				t.Fatalf("expected NotFound for A@B.COM, got %v", err)
			}
			got, err := s.users.GetByEmail(ctx, "A@b.com")
			if err != nil || got.ID != upper.ID {
				t.Fatalf("GetByEmail A@b.com: %+v %v", got, err)
			}
			if _, err := s.auth.Authenticate(ctx, "A@B.COM", "pw-secret"); !domain.IsUnauthorized(err) {
				t.Fatalf("expected Unauthorized for other-case email, got %v", err)
			}
		})
	}
}

func TestRegisterLongPasswordIsInvalid(t *testing.T) {
	s := newServices(t)
	// 40 символов, 80 байт в UTF-8
	_, err := s.auth.Register(context.Background(), "a@b.com", strings.Repeat("я", 40))
	if !domain.IsInvalid(err) {
		t.Fatalf("expected Invalid, got %v", err)
	}
	if _, err := s.users.GetByEmail(context.Background(), "a@b.com"); !domain.IsNotFound(err) {
		t.Fatalf("user must not be stored, got %v", err)
	}
}
