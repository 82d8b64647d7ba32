package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CachedProfile stores one complete aggregation result as an opaque JSON blob
// with a fixed expiry. The narrative is attached later when the caller
// requests one, so it may be empty.
type CachedProfile struct {
	bun.BaseModel `bun:"table:profile_cache,alias:pc"`

	ID        int64     `bun:",pk,autoincrement"`
	Key       string    `bun:",unique,notnull"`
	Payload   []byte    `bun:",notnull"`
	Narrative []byte    `bun:",nullzero"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	ExpiresAt time.Time `bun:",notnull"`
}
