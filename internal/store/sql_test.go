package store

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
)

func openSQLite(t *testing.T) Store {
	t.Helper()
	s, err := NewSQLStore(context.Background(), DriverSQLite, ":memory:", discardLogger())
	if err != nil {
		t.Fatalf("NewSQLStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLStoreSQLite(t *testing.T) {
	runStoreSuite(t, openSQLite)
}

func TestNewSQLStoreValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := NewSQLStore(ctx, DriverSQLite, "", discardLogger()); err == nil {
		t.Fatal("expected error for empty dsn")
	}
	if _, err := NewSQLStore(ctx, "oracle", "dsn", discardLogger()); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestSQLStoreSchemaIsIdempotent(t *testing.T) {
	s := openSQLite(t).(*SQLStore)
	if err := s.migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"pq unique", &pq.Error{Code: "23505"}, true},
		{"pq other", &pq.Error{Code: "23503"}, false},
		{"plain", errors.New("UNIQUE constraint failed"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Fatalf("isUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
