package bunstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tastecanvas/tastecanvas-api/internal/database"
	"github.com/tastecanvas/tastecanvas-api/internal/database/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

type BunStore struct {
	db *bun.DB
}

func NewBunStore(db *sql.DB, dialect schema.Dialect) (*BunStore, error) {
	bunDB := bun.NewDB(db, dialect)

	store := &BunStore{db: bunDB}

	// Create tables if they don't exist
	ctx := context.Background()
	if _, err := bunDB.NewCreateTable().Model((*models.CachedProfile)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create profile_cache table: %w", err)
	}

	return store, nil
}

// ProfileCacheRepository Implementation

// GetProfile returns the cached result for key. Expired rows are treated as
// misses and removed eagerly.
func (s *BunStore) GetProfile(ctx context.Context, key string) (*models.CachedProfile, error) {
	cached := new(models.CachedProfile)
	if err := s.db.NewSelect().Model(cached).Where("key = ?", key).Scan(ctx); err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrNotFound
		}
		return nil, err
	}

	if time.Now().After(cached.ExpiresAt) {
		_, _ = s.db.NewDelete().Model((*models.CachedProfile)(nil)).Where("key = ?", key).Exec(ctx)
		return nil, database.ErrNotFound
	}

	return cached, nil
}

// PutProfile inserts or replaces the cached result for key with a fresh TTL.
func (s *BunStore) PutProfile(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	cached := &models.CachedProfile{
		Key:       key,
		Payload:   payload,
		ExpiresAt: time.Now().Add(ttl),
	}

	_, err := s.db.NewInsert().Model(cached).
		On("CONFLICT (key) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("narrative = NULL").
		Set("expires_at = EXCLUDED.expires_at").
		Exec(ctx)
	return err
}

// AttachNarrative stores the generated narrative next to an existing cached
// profile. The profile's expiry is unchanged.
func (s *BunStore) AttachNarrative(ctx context.Context, key string, narrative []byte) error {
	res, err := s.db.NewUpdate().Model((*models.CachedProfile)(nil)).
		Set("narrative = ?", narrative).
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// PurgeExpired removes all rows past their expiry and reports how many.
func (s *BunStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.NewDelete().Model((*models.CachedProfile)(nil)).
		Where("expires_at < ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
