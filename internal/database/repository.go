package database

import (
	"context"
	"errors"
	"time"

	"github.com/tastecanvas/tastecanvas-api/internal/database/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrExpired  = errors.New("record expired")
)

// ProfileCacheRepository is the opaque, time-boxed cache of complete
// aggregation results. Entries are keyed by a hash of the canonicalized
// preference set; expired entries behave like misses.
type ProfileCacheRepository interface {
	GetProfile(ctx context.Context, key string) (*models.CachedProfile, error)
	PutProfile(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	AttachNarrative(ctx context.Context, key string, narrative []byte) error
	PurgeExpired(ctx context.Context) (int64, error)
}
