package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestProviderAuth_InvalidClaims(t *testing.T) {
	service := NewProviderAuthService(&fakeDB{})
	if _, err := service.SignInWithProvider(context.Background(), IdentityClaims{}); !errors.Is(err, ErrInvalidProviderClaims) {
		t.Fatalf("expected ErrInvalidProviderClaims, got %v", err)
	}
}

func TestProviderAuth_ExistingLink(t *testing.T) {
	userID := uuid.New()
	db := &fakeDB{fakeQuerier: fakeQuerier{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(userID, nil, nil, nil, "Ana", "Pérez", time.Now())
		},
	}}
	user, err := NewProviderAuthService(db).SignInWithProvider(context.Background(), IdentityClaims{
		Provider: ProviderGoogle, Subject: "sub",
	})
	if err != nil || user.ID != userID {
		t.Fatalf("expected linked user, got %+v %v", user, err)
	}
}

func TestProviderAuth_FirstSignInCreatesAndLinks(t *testing.T) {
	userID := uuid.New()
	var linked bool
	tx := &fakeTx{fakeQuerier: fakeQuerier{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			if args[1] != "Ana" || args[2] != "Pérez" {
				t.Fatalf("unexpected names %v", args)
			}
			email, ok := args[0].(*string)
			if !ok || email == nil || *email != "ana@example.com" {
				t.Fatalf("expected normalized email, got %v", args[0])
			}
			return rowFromValues(userID, nil, email, nil, "Ana", "Pérez", time.Now())
		},
		ExecFunc: func(ctx context.Context, sql string, args ...any) (Result, error) {
			if !strings.Contains(sql, "user_identities") {
				t.Fatalf("unexpected exec %q", sql)
			}
			linked = true
			return fakeResult{rowsAffected: 1}, nil
		},
	}}
	db := dbWithTx(tx)
	db.QueryRowFunc = func(ctx context.Context, sql string, args ...any) Row {
		return rowErr(pgx.ErrNoRows)
	}

	user, err := NewProviderAuthService(db).SignInWithProvider(context.Background(), IdentityClaims{
		Provider:   ProviderGoogle,
		Subject:    "sub",
		Email:      " Ana@Example.com ",
		GivenName:  "Ana",
		FamilyName: "Pérez",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != userID || !linked || !tx.committed {
		t.Fatalf("expected linked, committed user; got %+v linked=%v committed=%v", user, linked, tx.committed)
	}
}

func TestProviderAuth_ConcurrentLinkFallsBackToLookup(t *testing.T) {
	userID := uuid.New()
	lookups := 0
	tx := &fakeTx{fakeQuerier: fakeQuerier{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(uuid.New(), nil, nil, nil, "Ana", "Pérez", time.Now())
		},
		ExecFunc: func(ctx context.Context, sql string, args ...any) (Result, error) {
			return nil, &pgconn.PgError{Code: pgUniqueViolation}
		},
	}}
	db := dbWithTx(tx)
	db.QueryRowFunc = func(ctx context.Context, sql string, args ...any) Row {
		lookups++
		if lookups == 1 {
			return rowErr(pgx.ErrNoRows)
		}
		return rowFromValues(userID, nil, nil, nil, "Ana", "Pérez", time.Now())
	}

	user, err := NewProviderAuthService(db).SignInWithProvider(context.Background(), IdentityClaims{
		Provider: ProviderGoogle, Subject: "sub", Name: "Ana Pérez",
	})
	if err != nil || user.ID != userID {
		t.Fatalf("expected winner's user, got %+v %v", user, err)
	}
	if tx.committed {
		t.Fatal("losing transaction must not commit")
	}
}

func TestIdentityClaims_Names(t *testing.T) {
	tests := []struct {
		claims      IdentityClaims
		first, last string
	}{
		{IdentityClaims{GivenName: "Ana", FamilyName: "Pérez"}, "Ana", "Pérez"},
		{IdentityClaims{Name: "Luis Miguel Soto"}, "Luis", "Miguel Soto"},
		{IdentityClaims{GivenName: "Ana", Name: "Ana Pérez"}, "Ana", "Pérez"},
		{IdentityClaims{Name: "Cher"}, "Cher", "-"},
		{IdentityClaims{}, "Cliente", "-"},
	}
	for _, tt := range tests {
		first, last := tt.claims.Names()
		if first != tt.first || last != tt.last {
			t.Fatalf("%+v: got %q %q, want %q %q", tt.claims, first, last, tt.first, tt.last)
		}
	}
}
