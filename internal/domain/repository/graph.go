package repository

import (
	"context"
	"errors"

	"github.com/tastecanvas/tastecanvas-api/internal/domain/models"
)

// Provider error taxonomy. Resolver and Analyzer treat ErrProviderRateLimited
// and ErrProviderUnavailable as "no results, continue"; ErrProviderUnauthorized
// is a configuration problem and must surface immediately.
var (
	ErrProviderUnauthorized = errors.New("cultural graph provider: unauthorized")
	ErrProviderRateLimited  = errors.New("cultural graph provider: rate limited")
	ErrProviderUnavailable  = errors.New("cultural graph provider: unavailable")
)

// CulturalGraphRepository is the narrow contract against the external cultural
// graph provider. Implementations must map HTTP status classes to the sentinel
// errors below so callers can apply the degradation policy per class.
type CulturalGraphRepository interface {
	// Search returns ranked raw entities for a free-text query, optionally
	// filtered to one preference category.
	Search(ctx context.Context, query string, category models.Category, limit int) ([]models.RawEntity, error)

	// Recommend returns scored cross-domain suggestions seeded by entity IDs,
	// targeting entities of the given category.
	Recommend(ctx context.Context, seedIDs []string, target models.Category, limit int) ([]models.Recommendation, error)
}
