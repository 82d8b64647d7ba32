package profile

import (
	"context"
	"errors"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tastecanvas/tastecanvas-api/internal/domain/models"
	"github.com/tastecanvas/tastecanvas-api/internal/domain/repository"
	"github.com/tastecanvas/tastecanvas-api/internal/usecase/connect"
)

// EntityResolver turns one preference string into its best-matching entity.
type EntityResolver interface {
	Resolve(ctx context.Context, query string, category models.Category) (*models.ResolvedEntity, models.ResolutionOutcome, error)
}

// ConnectionAnalyzer derives the relationship between two preference domains.
type ConnectionAnalyzer interface {
	Analyze(ctx context.Context, domain1, domain2 models.Category, entities1, entities2 []models.ResolvedEntity) models.Connection
}

// Aggregator orchestrates resolution and connection analysis across all
// populated categories and derives the profile-level metrics.
type Aggregator struct {
	resolver EntityResolver
	analyzer ConnectionAnalyzer
}

func NewAggregator(resolver EntityResolver, analyzer ConnectionAnalyzer) *Aggregator {
	return &Aggregator{
		resolver: resolver,
		analyzer: analyzer,
	}
}

// Aggregate builds a CulturalProfile for the given preferences. Provider
// failures degrade the result rather than failing the run; the only returned
// error is context cancellation, in which case the partial result is discarded.
func (a *Aggregator) Aggregate(ctx context.Context, prefs models.PreferenceSet) (*models.CulturalProfile, error) {
	mapping, outcomes, resolveErr := a.resolveAll(ctx, prefs)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if resolveErr != nil && mapping.TotalEntities() == 0 {
		log.Printf("[Profile] Aggregation degraded, cultural graph unreachable: %v", resolveErr)
		return degradedProfile(prefs, outcomes, resolveErr), nil
	}
	if resolveErr != nil {
		log.Printf("[Profile] Partial resolution failure, continuing with %d entities: %v", mapping.TotalEntities(), resolveErr)
	}

	connections := a.analyzeConnections(ctx, mapping)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	profile := &models.CulturalProfile{
		Themes:         extractThemes(mapping),
		Connections:    connections,
		Patterns:       extractPatterns(mapping, prefs),
		DiversityScore: diversityScore(mapping),
		CulturalDepth:  culturalDepth(prefs),
		QlooInsights:   buildInsights(mapping, prefs, outcomes),
	}

	log.Printf("[Profile] Aggregated %d entities across %d categories, %d connections, diversity %d, depth %d",
		mapping.TotalEntities(), len(profile.QlooInsights.CategoriesWithEntities), len(connections),
		profile.DiversityScore, profile.CulturalDepth)

	return profile, nil
}

// resolveAll resolves every preference item, running categories concurrently
// while keeping items within one category sequential to respect provider
// pacing. Soft provider failures are recorded and resolution continues;
// unauthorized responses abort the remaining work.
func (a *Aggregator) resolveAll(ctx context.Context, prefs models.PreferenceSet) (models.EntityMapping, []models.ResolutionOutcome, error) {
	mapping := models.EntityMapping{}
	var outcomes []models.ResolutionOutcome
	var softErr error
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, category := range prefs.ActiveCategories() {
		category := category
		items := prefs[category]
		g.Go(func() error {
			var resolved []models.ResolvedEntity
			var local []models.ResolutionOutcome
			for _, item := range items {
				entity, outcome, err := a.resolver.Resolve(gctx, item, category)
				if err != nil {
					if errors.Is(err, repository.ErrProviderUnauthorized) || gctx.Err() != nil {
						return err
					}
					mu.Lock()
					softErr = err
					mu.Unlock()
					local = append(local, outcome)
					continue
				}
				local = append(local, outcome)
				if entity != nil {
					resolved = append(resolved, *entity)
				}
			}
			mu.Lock()
			if len(resolved) > 0 {
				mapping[category] = resolved
			}
			outcomes = append(outcomes, local...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return mapping, outcomes, err
	}
	return mapping, outcomes, softErr
}

// analyzeConnections runs the analyzer over every unordered pair of categories
// holding at least one resolved entity, keeping only connections above the
// noise threshold.
func (a *Aggregator) analyzeConnections(ctx context.Context, mapping models.EntityMapping) []models.Connection {
	var populated []models.Category
	for _, c := range models.Categories() {
		if len(mapping[c]) > 0 {
			populated = append(populated, c)
		}
	}

	connections := []models.Connection{}
	for i := 0; i < len(populated); i++ {
		for j := i + 1; j < len(populated); j++ {
			if ctx.Err() != nil {
				return connections
			}
			conn := a.analyzer.Analyze(ctx, populated[i], populated[j], mapping[populated[i]], mapping[populated[j]])
			if conn.Strength > connect.MinStrength {
				connections = append(connections, conn)
			}
		}
	}
	return connections
}

func buildInsights(mapping models.EntityMapping, prefs models.PreferenceSet, outcomes []models.ResolutionOutcome) models.QlooInsights {
	byCategory := make(map[models.Category]int)
	var withEntities []models.Category
	for _, c := range models.Categories() {
		if n := len(mapping[c]); n > 0 {
			byCategory[c] = n
			withEntities = append(withEntities, c)
		}
	}

	total := mapping.TotalEntities()
	inputs := prefs.TotalItems()
	matchRate := 0.0
	if inputs > 0 {
		matchRate = float64(total) / float64(inputs)
	}

	return models.QlooInsights{
		EntitiesByCategory:     byCategory,
		TotalEntitiesFound:     total,
		TotalPreferences:       inputs,
		MatchRate:              matchRate,
		CategoriesWithEntities: withEntities,
		Resolutions:            outcomes,
	}
}

// degradedProfile is the all-failures fallback: a valid, renderable profile
// with neutral scores and the failure recorded in the diagnostics.
func degradedProfile(prefs models.PreferenceSet, outcomes []models.ResolutionOutcome, cause error) *models.CulturalProfile {
	return &models.CulturalProfile{
		Themes:         []string{"Cultural Explorer", "Developing Cultural Identity"},
		Connections:    []models.Connection{},
		Patterns:       []string{"Developing cultural interests", "Profile analysis limited by provider availability"},
		DiversityScore: defaultDiversityScore,
		CulturalDepth:  defaultCulturalDepth,
		QlooInsights: models.QlooInsights{
			EntitiesByCategory: map[models.Category]int{},
			TotalPreferences:   prefs.TotalItems(),
			Resolutions:        outcomes,
			Error:              cause.Error(),
		},
	}
}
