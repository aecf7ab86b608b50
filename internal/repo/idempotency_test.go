package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/petadopt/go-adopt-backend/internal/domain"
)

func newIdemDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("idem_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestIdempotency_CreateThenGet(t *testing.T) {
	db := newIdemDB(t)
	ctx := context.Background()

	rec, err := CreateIdempotency(ctx, db, "a@x.y", "c1", "key-1", "pay-1", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.PaymentID != "pay-1" || rec.Status != 201 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.ExpiresAt.After(rec.CreatedAt) {
		t.Fatalf("ttl not applied: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "a@x.y", "c1", "key-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if got.PaymentID != "pay-1" {
		t.Fatalf("replay resolves wrong payment: %+v", got)
	}
}

func TestIdempotency_ScopedLookups(t *testing.T) {
	db := newIdemDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := CreateIdempotency(ctx, db, "a@x.y", "c1", "key-1", "pay-1", 201, time.Hour); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// The tuple is scoped per donator and per campaign.
	if _, err := GetIdempotency(ctx, db, "b@x.y", "c1", "key-1", now); err != ErrNotFound {
		t.Fatalf("foreign donator: got %v, want ErrNotFound", err)
	}
	if _, err := GetIdempotency(ctx, db, "a@x.y", "c2", "key-1", now); err != ErrNotFound {
		t.Fatalf("foreign campaign: got %v, want ErrNotFound", err)
	}
	if _, err := GetIdempotency(ctx, db, "a@x.y", "", "key-1", now); err != ErrNotFound {
		t.Fatalf("blank campaign: got %v, want ErrNotFound", err)
	}
}

func TestIdempotency_ExpiredRecordNotReturned(t *testing.T) {
	db := newIdemDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "a@x.y", "c1", "key-1", "pay-1", 201, time.Millisecond); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := GetIdempotency(ctx, db, "a@x.y", "c1", "key-1", time.Now().UTC().Add(time.Second)); err != ErrNotFound {
		t.Fatalf("expired record: got %v, want ErrNotFound", err)
	}
}

func TestIdempotency_DuplicateTuple(t *testing.T) {
	db := newIdemDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "a@x.y", "c1", "key-1", "pay-1", 201, time.Hour); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, "a@x.y", "c1", "key-1", "pay-2", 201, time.Hour); err != ErrDuplicate {
		t.Fatalf("second insert: got %v, want ErrDuplicate", err)
	}

	// A different key under the same donator/campaign is a fresh operation.
	if _, err := CreateIdempotency(ctx, db, "a@x.y", "c1", "key-2", "pay-3", 201, time.Hour); err != nil {
		t.Fatalf("distinct key: %v", err)
	}
}
