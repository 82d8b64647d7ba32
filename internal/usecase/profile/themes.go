package profile

import (
	"fmt"

	"github.com/tastecanvas/tastecanvas-api/internal/domain/models"
)

// extractThemes derives identity-style theme labels from the resolved entity
// set. Each rule contributes at most one theme; the list is empty only when
// nothing resolved at all.
func extractThemes(mapping models.EntityMapping) []string {
	var themes []string
	total := mapping.TotalEntities()

	// Recognition volume.
	switch {
	case total >= 15:
		themes = append(themes, "Globally Recognized Tastemaker")
	case total >= 8:
		themes = append(themes, "Culturally Attuned Explorer")
	case total >= 3:
		themes = append(themes, "Emerging Cultural Curator")
	case total >= 1:
		themes = append(themes, "Cultural Newcomer")
	}

	// Domain coverage.
	switch coverage := categoriesWithEntities(mapping); {
	case coverage >= 5:
		themes = append(themes, "Omnivorous Renaissance Spirit")
	case coverage >= 4:
		themes = append(themes, "Multi-Domain Enthusiast")
	case coverage >= 2:
		themes = append(themes, "Cross-Domain Curious")
	}

	// Specialization: the single deepest category.
	if cat, n := deepestCategory(mapping); n >= 4 {
		themes = append(themes, fmt.Sprintf("Dedicated %s Specialist", cat))
	} else if n >= 2 {
		themes = append(themes, fmt.Sprintf("Focused %s Enthusiast", cat))
	}

	// Popularity tier.
	if mean, _ := popularityStats(mapping); mean > 0 {
		switch {
		case mean > 0.7:
			themes = append(themes, "Mainstream Pulse Follower")
		case mean > 0.4:
			themes = append(themes, "Balanced Taste Blender")
		default:
			themes = append(themes, "Hidden Gem Hunter")
		}
	}

	// Geographic diversity.
	switch countries := distinctCountries(mapping); {
	case countries >= 4:
		themes = append(themes, "Global Cultural Citizen")
	case countries >= 2:
		themes = append(themes, "Internationally Curious")
	}

	return themes
}

// deepestCategory returns the category holding the most resolved entities,
// preferring earlier categories in canonical order on ties.
func deepestCategory(mapping models.EntityMapping) (models.Category, int) {
	var best models.Category
	max := 0
	for _, c := range models.Categories() {
		if n := len(mapping[c]); n > max {
			best = c
			max = n
		}
	}
	return best, max
}
