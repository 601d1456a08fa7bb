package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestLikeService_List(t *testing.T) {
	userID := uuid.New()
	db := &fakeQuerier{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			return &fakeRows{rows: [][]any{{userID, "1"}, {userID, "4"}}}, nil
		},
	}
	likes, err := NewLikeService(db).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(likes) != 2 || likes[1].ItemID != "4" || likes[0].UserID != userID {
		t.Fatalf("unexpected likes %+v", likes)
	}
}

func TestLikeService_AddIsIdempotentInsert(t *testing.T) {
	var sqlSeen string
	db := &fakeQuerier{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (Result, error) {
			sqlSeen = sql
			return fakeResult{}, nil
		},
	}
	if err := NewLikeService(db).Add(context.Background(), uuid.New(), "3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sqlSeen, "ON CONFLICT") {
		t.Fatalf("expected conflict-tolerant insert, got %q", sqlSeen)
	}
}

func TestLikeService_UnknownItem(t *testing.T) {
	db := &fakeQuerier{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (Result, error) {
			t.Fatal("unknown items must not reach the database")
			return nil, nil
		},
	}
	service := NewLikeService(db)
	if err := service.Add(context.Background(), uuid.New(), "99"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if err := service.Remove(context.Background(), uuid.New(), "99"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestLikeService_RemoveAbsentLikeSucceeds(t *testing.T) {
	db := &fakeQuerier{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (Result, error) {
			return fakeResult{rowsAffected: 0}, nil
		},
	}
	if err := NewLikeService(db).Remove(context.Background(), uuid.New(), "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLikeService_ExecError(t *testing.T) {
	boom := errors.New("boom")
	db := &fakeQuerier{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (Result, error) {
			return nil, boom
		},
	}
	if err := NewLikeService(db).Add(context.Background(), uuid.New(), "1"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}
