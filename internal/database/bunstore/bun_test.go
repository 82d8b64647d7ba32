package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/tastecanvas/tastecanvas-api/internal/database"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestStore(t *testing.T) *BunStore {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewBunStore(db, sqlitedialect.New())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestProfileCache_PutAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.PutProfile(ctx, "key-1", []byte(`{"themes":[]}`), time.Hour); err != nil {
		t.Fatalf("PutProfile failed: %v", err)
	}

	cached, err := store.GetProfile(ctx, "key-1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if string(cached.Payload) != `{"themes":[]}` {
		t.Errorf("unexpected payload: %s", cached.Payload)
	}
}

func TestProfileCache_Miss(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetProfile(context.Background(), "missing")
	if !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileCache_ExpiredBehavesLikeMiss(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.PutProfile(ctx, "short", []byte(`{}`), time.Millisecond); err != nil {
		t.Fatalf("PutProfile failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, err := store.GetProfile(ctx, "short")
	if !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound for expired entry, got %v", err)
	}
}

func TestProfileCache_OverwriteResetsNarrative(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.PutProfile(ctx, "key-2", []byte(`{"v":1}`), time.Hour); err != nil {
		t.Fatalf("PutProfile failed: %v", err)
	}
	if err := store.AttachNarrative(ctx, "key-2", []byte(`{"title":"x"}`)); err != nil {
		t.Fatalf("AttachNarrative failed: %v", err)
	}

	// Re-aggregation replaces the payload and clears the stale narrative
	if err := store.PutProfile(ctx, "key-2", []byte(`{"v":2}`), time.Hour); err != nil {
		t.Fatalf("second PutProfile failed: %v", err)
	}

	cached, err := store.GetProfile(ctx, "key-2")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if string(cached.Payload) != `{"v":2}` {
		t.Errorf("unexpected payload: %s", cached.Payload)
	}
	if len(cached.Narrative) != 0 {
		t.Errorf("expected narrative cleared on overwrite, got %s", cached.Narrative)
	}
}

func TestProfileCache_AttachNarrativeMissingKey(t *testing.T) {
	store := newTestStore(t)

	err := store.AttachNarrative(context.Background(), "nope", []byte(`{}`))
	if !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileCache_PurgeExpired(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.PutProfile(ctx, "old", []byte(`{}`), time.Millisecond); err != nil {
		t.Fatalf("PutProfile failed: %v", err)
	}
	if err := store.PutProfile(ctx, "fresh", []byte(`{}`), time.Hour); err != nil {
		t.Fatalf("PutProfile failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	purged, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("expected 1 purged row, got %d", purged)
	}

	if _, err := store.GetProfile(ctx, "fresh"); err != nil {
		t.Errorf("fresh entry should survive purge, got %v", err)
	}
}
