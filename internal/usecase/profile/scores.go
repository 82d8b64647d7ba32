package profile

import (
	"math"

	"github.com/tastecanvas/tastecanvas-api/internal/domain/models"
)

const (
	// Neutral defaults applied when scoring has nothing to work with.
	defaultDiversityScore = 50
	defaultCulturalDepth  = 25

	categoryCount = 5
)

// diversityScore combines six capped sub-scores into a 0-100 integer:
// domain coverage, recognition volume, popularity spread, entity-type
// variety, geographic spread, and balance across categories.
func diversityScore(mapping models.EntityMapping) int {
	total := mapping.TotalEntities()
	if total == 0 {
		return defaultDiversityScore
	}

	coverage := float64(categoriesWithEntities(mapping)) / categoryCount * 25

	recognition := math.Min(25, float64(total)/20*25)

	mean, spread := popularityStats(mapping)
	popularity := math.Min(20, spread*10+mean*10)

	types := math.Min(15, float64(distinctTypes(mapping))*1.5)

	geographic := math.Min(10, float64(distinctCountries(mapping))*2.5)

	balance := (1 - countBalanceVariance(mapping)) * 5

	return int(math.Round(coverage + recognition + popularity + types + geographic + balance))
}

// culturalDepth scores how many items the user entered per active category,
// scaled by 20 and capped at 100.
func culturalDepth(prefs models.PreferenceSet) int {
	active := len(prefs.ActiveCategories())
	if active == 0 {
		return defaultCulturalDepth
	}
	avg := float64(prefs.TotalItems()) / float64(active)
	return int(math.Min(100, math.Round(avg*20)))
}

func categoriesWithEntities(mapping models.EntityMapping) int {
	count := 0
	for _, ents := range mapping {
		if len(ents) > 0 {
			count++
		}
	}
	return count
}

// popularityStats returns the mean popularity across all entities carrying a
// popularity value, together with the population standard deviation clamped
// to [0,1]. Both are 0 when no entity has a popularity.
func popularityStats(mapping models.EntityMapping) (mean, spread float64) {
	var values []float64
	for _, ents := range mapping {
		for _, e := range ents {
			if e.Popularity != nil {
				values = append(values, *e.Popularity)
			}
		}
	}
	if len(values) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	return mean, math.Min(1, math.Sqrt(variance))
}

func distinctTypes(mapping models.EntityMapping) int {
	seen := make(map[string]bool)
	for _, ents := range mapping {
		for _, e := range ents {
			for _, t := range e.Types {
				seen[t] = true
			}
		}
	}
	return len(seen)
}

func distinctCountries(mapping models.EntityMapping) int {
	seen := make(map[string]bool)
	for _, ents := range mapping {
		for _, e := range ents {
			if e.Country != "" {
				seen[e.Country] = true
			}
		}
	}
	return len(seen)
}

// countBalanceVariance measures how unevenly entities spread across the five
// categories. The population variance of per-category counts is normalized by
// 10 and clamped to [0,1], so a perfectly even spread yields 0.
func countBalanceVariance(mapping models.EntityMapping) float64 {
	counts := make([]float64, 0, categoryCount)
	sum := 0.0
	for _, c := range models.Categories() {
		n := float64(len(mapping[c]))
		counts = append(counts, n)
		sum += n
	}
	mean := sum / categoryCount

	variance := 0.0
	for _, n := range counts {
		d := n - mean
		variance += d * d
	}
	variance /= categoryCount

	return math.Min(1, variance/10)
}
