package profile

import (
	"github.com/tastecanvas/tastecanvas-api/internal/domain/models"
)

// extractPatterns produces observational statements about the preference set,
// keyed off match rate, domain coverage, type variety, popularity spread and
// geography. The provider-validation note closes the list unconditionally.
func extractPatterns(mapping models.EntityMapping, prefs models.PreferenceSet) []string {
	var patterns []string

	total := mapping.TotalEntities()
	inputs := prefs.TotalItems()

	if inputs > 0 {
		matchRate := float64(total) / float64(inputs)
		switch {
		case matchRate >= 0.8:
			patterns = append(patterns, "Strong alignment with widely recognized cultural works")
		case matchRate >= 0.5:
			patterns = append(patterns, "Blend of mainstream and niche cultural interests")
		case matchRate > 0:
			patterns = append(patterns, "Leaning toward niche or emerging cultural items")
		}
	}

	switch coverage := categoriesWithEntities(mapping); {
	case coverage >= 4:
		patterns = append(patterns, "Broad cultural engagement across most domains")
	case coverage >= 2:
		patterns = append(patterns, "Selective engagement across a few chosen domains")
	case coverage == 1:
		patterns = append(patterns, "Concentrated cultural expertise in a single domain")
	}

	switch types := distinctTypes(mapping); {
	case types >= 8:
		patterns = append(patterns, "Wide variety of cultural entity types")
	case types >= 4:
		patterns = append(patterns, "Moderate variety of cultural entity types")
	}

	if _, spread := popularityStats(mapping); spread > 0.3 {
		patterns = append(patterns, "Taste spans both popular hits and obscure finds")
	} else if total > 0 {
		patterns = append(patterns, "Consistent popularity tier across preferences")
	}

	if distinctCountries(mapping) >= 2 {
		patterns = append(patterns, "Geographically diverse cultural footprint")
	}

	patterns = append(patterns, "Preferences validated against a global cultural graph")

	return patterns
}
