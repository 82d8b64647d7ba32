package resolve

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/tastecanvas/tastecanvas-api/internal/domain/models"
	"github.com/tastecanvas/tastecanvas-api/internal/domain/repository"
	"github.com/tastecanvas/tastecanvas-api/internal/infrastructure/resilience"
)

const (
	searchLimit          = 5
	minRelevance         = 0.15
	fallbackMinRelevance = 0.05
	highConfidenceScore  = 0.5
	highConfidenceTarget = 3

	breakerThreshold = 3
	breakerTimeout   = 30 * time.Second
)

// categoryKeywords drives the genre-keyword fallback search when no variation
// produces a relevant match.
var categoryKeywords = map[models.Category][]string{
	models.CategoryMusic:  {"pop music", "indie artist"},
	models.CategoryMovies: {"award winning film", "classic cinema"},
	models.CategoryFood:   {"restaurant cuisine", "fine dining"},
	models.CategoryTravel: {"travel destination", "tourist city"},
	models.CategoryBooks:  {"bestselling novel", "literary fiction"},
}

// Resolver turns one free-text preference string into at most one best-match
// provider entity.
type Resolver struct {
	graph       repository.CulturalGraphRepository
	maxAttempts int
}

// NewResolver creates a resolver with a bounded per-resolution attempt budget.
func NewResolver(graph repository.CulturalGraphRepository, maxAttempts int) *Resolver {
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	return &Resolver{
		graph:       graph,
		maxAttempts: maxAttempts,
	}
}

type candidate struct {
	entity models.ResolvedEntity
	score  float64
}

// Resolve searches the provider across query variations and returns the single
// best-matching entity with its resolution outcome. A nil entity is the
// expected no-match result, not an error; the outcome records what happened.
// The returned error is non-nil only when every provider call in the
// resolution failed at the transport level.
func (r *Resolver) Resolve(ctx context.Context, query string, category models.Category) (*models.ResolvedEntity, models.ResolutionOutcome, error) {
	outcome := models.ResolutionOutcome{Category: category, Query: query}

	breaker := resilience.NewCircuitBreaker(breakerThreshold, breakerTimeout)
	var candidates []candidate
	attempts := 0
	highConfidence := 0
	transportFailures := 0
	calls := 0

	for _, variation := range Variations(query) {
		if attempts >= r.maxAttempts || highConfidence >= highConfidenceTarget {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, outcome, err
		}

		var raws []models.RawEntity
		err := breaker.Execute(func() error {
			var searchErr error
			raws, searchErr = r.graph.Search(ctx, variation, category, searchLimit)
			return searchErr
		})
		if errors.Is(err, resilience.ErrCircuitOpen) {
			log.Printf("[Resolver] Provider outage detected for %q; skipping remaining variations", query)
			break
		}
		attempts++
		calls++
		if err != nil {
			if errors.Is(err, repository.ErrProviderUnauthorized) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, outcome, err
			}
			transportFailures++
			log.Printf("[Resolver] Search failed for variation %q: %v", variation, err)
			continue
		}

		for _, raw := range raws {
			entity, ok := raw.Normalize(category)
			if !ok {
				continue
			}
			// Scored against the original query, not the variation
			score := Score(entity.Name, entity.Tags, query)
			if score < minRelevance {
				continue
			}
			candidates = append(candidates, candidate{entity: entity, score: score})
			if score > highConfidenceScore {
				highConfidence++
			}
		}
	}

	if len(candidates) == 0 && breaker.CurrentState() != resilience.StateOpen {
		candidates = r.fallbackSearch(ctx, query, category)
	}

	best, ok := pickBest(candidates)
	if !ok {
		if calls > 0 && transportFailures == calls {
			return nil, outcome, repository.ErrProviderUnavailable
		}
		log.Printf("[Resolver] No entity matched %q in %s", query, category)
		return nil, outcome, nil
	}

	outcome.Matched = true
	outcome.EntityID = best.entity.ID
	outcome.EntityName = best.entity.Name
	outcome.Score = best.score
	log.Printf("[Resolver] Matched %q to %q (score %.2f)", query, best.entity.Name, best.score)
	return &best.entity, outcome, nil
}

// fallbackSearch tries the per-category genre keywords and finally a generic
// "popular <category>" query, both at a lower relevance threshold.
func (r *Resolver) fallbackSearch(ctx context.Context, query string, category models.Category) []candidate {
	queries := append([]string{}, categoryKeywords[category]...)
	queries = append(queries, "popular "+string(category))

	var candidates []candidate
	for _, fallbackQuery := range queries {
		if ctx.Err() != nil {
			return candidates
		}
		raws, err := r.graph.Search(ctx, fallbackQuery, category, searchLimit)
		if err != nil {
			log.Printf("[Resolver] Fallback search %q failed: %v", fallbackQuery, err)
			continue
		}
		for _, raw := range raws {
			entity, ok := raw.Normalize(category)
			if !ok {
				continue
			}
			score := Score(entity.Name, entity.Tags, query)
			if score < fallbackMinRelevance {
				continue
			}
			candidates = append(candidates, candidate{entity: entity, score: score})
		}
		if len(candidates) > 0 {
			break
		}
	}
	return candidates
}

// pickBest deduplicates by entity ID (keeping the higher score) and returns
// the top candidate by score, tie-broken by provider popularity.
func pickBest(candidates []candidate) (candidate, bool) {
	if len(candidates) == 0 {
		return candidate{}, false
	}

	byID := make(map[string]candidate)
	for _, c := range candidates {
		if existing, ok := byID[c.entity.ID]; !ok || c.score > existing.score {
			byID[c.entity.ID] = c
		}
	}

	deduped := make([]candidate, 0, len(byID))
	for _, c := range byID {
		deduped = append(deduped, c)
	}

	sort.Slice(deduped, func(i, j int) bool {
		if deduped[i].score != deduped[j].score {
			return deduped[i].score > deduped[j].score
		}
		return popularity(deduped[i].entity) > popularity(deduped[j].entity)
	})

	return deduped[0], true
}

func popularity(e models.ResolvedEntity) float64 {
	if e.Popularity == nil {
		return 0
	}
	return *e.Popularity
}
