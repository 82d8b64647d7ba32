package connect

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/tastecanvas/tastecanvas-api/internal/domain/models"
	"github.com/tastecanvas/tastecanvas-api/internal/domain/repository"
)

const (
	recommendLimit = 5

	// MinStrength is the noise threshold: connections at or below it are
	// discarded by the aggregator before reaching the profile.
	MinStrength = 0.1

	placeholderStrength = 0.2
	maxProviderStrength = 0.95
)

// Weights parameterize the heuristic similarity fallback. The defaults are an
// uncalibrated approximation, which is why they are configuration rather than
// constants.
type Weights struct {
	Popularity float64
	Location   float64
	Tags       float64
	Base       float64
}

// DefaultWeights returns the standard heuristic weighting.
func DefaultWeights() Weights {
	return Weights{Popularity: 0.4, Location: 0.3, Tags: 0.2, Base: 0.1}
}

// Analyzer computes cross-domain connection strength between two preference
// categories, preferring the provider's own recommendation signal and falling
// back to heuristic similarity.
type Analyzer struct {
	graph   repository.CulturalGraphRepository
	weights Weights
}

// NewAnalyzer creates an analyzer. Zero-value weights select the defaults.
func NewAnalyzer(graph repository.CulturalGraphRepository, weights Weights) *Analyzer {
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}
	return &Analyzer{
		graph:   graph,
		weights: weights,
	}
}

// Analyze derives a Connection between two domains. It never fails: provider
// errors degrade to the heuristic path, and empty entity groups yield a
// minimal placeholder rather than omitting the pair.
func (a *Analyzer) Analyze(ctx context.Context, domain1, domain2 models.Category, entities1, entities2 []models.ResolvedEntity) models.Connection {
	if len(entities1) == 0 && len(entities2) == 0 {
		return models.Connection{
			Domain1:     domain1,
			Domain2:     domain2,
			Strength:    placeholderStrength,
			Explanation: fmt.Sprintf("Potential connection between your %s and %s tastes; not enough resolved data to analyze.", domain1, domain2),
		}
	}

	if len(entities1) > 0 {
		if conn, ok := a.analyzeWithProvider(ctx, domain1, domain2, entities1, entities2); ok {
			return conn
		}
	}

	return a.analyzeWithHeuristic(domain1, domain2, entities1, entities2)
}

// analyzeWithProvider asks the graph provider for cross-domain recommendations
// seeded by the first group's entities.
func (a *Analyzer) analyzeWithProvider(ctx context.Context, domain1, domain2 models.Category, entities1, entities2 []models.ResolvedEntity) (models.Connection, bool) {
	seedIDs := make([]string, 0, len(entities1))
	for _, e := range entities1 {
		seedIDs = append(seedIDs, e.ID)
	}

	recs, err := a.graph.Recommend(ctx, seedIDs, domain2, recommendLimit)
	if err != nil {
		log.Printf("[Connect] Recommendation lookup %s→%s failed, using similarity fallback: %v", domain1, domain2, err)
		return models.Connection{}, false
	}
	if len(recs) == 0 {
		return models.Connection{}, false
	}

	countRatio := float64(len(recs)) / float64(recommendLimit)
	avgScore := 0.0
	for _, r := range recs {
		avgScore += r.Score
	}
	avgScore /= float64(len(recs))

	strength := math.Min(maxProviderStrength, countRatio*0.7+avgScore*0.3)

	related := append([]string{}, seedIDs...)
	for _, r := range recs {
		related = append(related, r.ID)
	}

	return models.Connection{
		Domain1:          domain1,
		Domain2:          domain2,
		Strength:         strength,
		Explanation:      fmt.Sprintf("The cultural graph identified thematic connections between your %s and %s preferences.", domain1, domain2),
		RelatedEntityIDs: related,
	}, true
}

// analyzeWithHeuristic derives strength from popularity, geography and tag
// similarity when no direct recommendation signal exists.
func (a *Analyzer) analyzeWithHeuristic(domain1, domain2 models.Category, entities1, entities2 []models.ResolvedEntity) models.Connection {
	popSim := 1 - math.Abs(avgPopularity(entities1)-avgPopularity(entities2))
	locSim := jaccard(countries(entities1), countries(entities2))
	tagSim := jaccard(tagSet(entities1), tagSet(entities2))

	strength := a.weights.Popularity*popSim +
		a.weights.Location*locSim +
		a.weights.Tags*tagSim +
		a.weights.Base
	strength = math.Max(MinStrength, strength)

	var related []string
	for _, e := range entities1 {
		related = append(related, e.ID)
	}
	for _, e := range entities2 {
		related = append(related, e.ID)
	}

	return models.Connection{
		Domain1:          domain1,
		Domain2:          domain2,
		Strength:         strength,
		Explanation:      fmt.Sprintf("Your %s and %s preferences show cross-domain similarity in popularity, geography and shared tags.", domain1, domain2),
		RelatedEntityIDs: related,
	}
}

func avgPopularity(entities []models.ResolvedEntity) float64 {
	sum := 0.0
	count := 0
	for _, e := range entities {
		if e.Popularity != nil {
			sum += *e.Popularity
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func countries(entities []models.ResolvedEntity) map[string]bool {
	set := make(map[string]bool)
	for _, e := range entities {
		if e.Country != "" {
			set[e.Country] = true
		}
	}
	return set
}

func tagSet(entities []models.ResolvedEntity) map[string]bool {
	set := make(map[string]bool)
	for _, e := range entities {
		for _, t := range e.Tags {
			set[t] = true
		}
	}
	return set
}

// jaccard returns |a ∩ b| / |a ∪ b|, or 0 when either set is empty.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
