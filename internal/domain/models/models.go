package models

// Category identifies one of the fixed preference domains.
type Category string

const (
	CategoryMusic  Category = "music"
	CategoryMovies Category = "movies"
	CategoryFood   Category = "food"
	CategoryTravel Category = "travel"
	CategoryBooks  Category = "books"
)

// Categories returns all preference domains in their canonical order.
func Categories() []Category {
	return []Category{CategoryMusic, CategoryMovies, CategoryFood, CategoryTravel, CategoryBooks}
}

// IsValidCategory reports whether s names a known preference domain.
func IsValidCategory(s string) bool {
	switch Category(s) {
	case CategoryMusic, CategoryMovies, CategoryFood, CategoryTravel, CategoryBooks:
		return true
	}
	return false
}

// MaxItemsPerCategory bounds how many preference strings a user may enter per domain.
const MaxItemsPerCategory = 5

// PreferenceSet maps each category to the user's free-text preference strings.
// It is immutable once handed to the aggregation pipeline.
type PreferenceSet map[Category][]string

// TotalItems counts all preference strings across categories.
func (p PreferenceSet) TotalItems() int {
	total := 0
	for _, items := range p {
		total += len(items)
	}
	return total
}

// ActiveCategories returns the categories holding at least one item, in canonical order.
func (p PreferenceSet) ActiveCategories() []Category {
	var active []Category
	for _, c := range Categories() {
		if len(p[c]) > 0 {
			active = append(active, c)
		}
	}
	return active
}

// ResolvedEntity is the canonical in-memory shape of a provider entity.
type ResolvedEntity struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	Popularity *float64 `json:"popularity,omitempty"`
	Types      []string `json:"types,omitempty"`
	Country    string   `json:"country,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// EntityMapping holds the best-match entity per resolved preference string,
// keyed by category. Unmatched strings are simply absent.
type EntityMapping map[Category][]ResolvedEntity

// TotalEntities counts all resolved entities across categories.
func (m EntityMapping) TotalEntities() int {
	total := 0
	for _, ents := range m {
		total += len(ents)
	}
	return total
}

// Connection describes the derived relationship between two preference domains.
type Connection struct {
	Domain1          Category `json:"domain1"`
	Domain2          Category `json:"domain2"`
	Strength         float64  `json:"strength"`
	Explanation      string   `json:"explanation"`
	RelatedEntityIDs []string `json:"relatedEntityIds,omitempty"`
}

// ResolutionOutcome records what happened to a single input preference string.
// Retained for diagnostics even though the UI may not display it.
type ResolutionOutcome struct {
	Category   Category `json:"category"`
	Query      string   `json:"query"`
	Matched    bool     `json:"matched"`
	EntityID   string   `json:"entityId,omitempty"`
	EntityName string   `json:"entityName,omitempty"`
	Score      float64  `json:"score,omitempty"`
}

// QlooInsights carries diagnostic accounting for one aggregation run.
type QlooInsights struct {
	EntitiesByCategory     map[Category]int    `json:"entitiesByCategory"`
	TotalEntitiesFound     int                 `json:"totalEntitiesFound"`
	TotalPreferences       int                 `json:"totalPreferences"`
	MatchRate              float64             `json:"matchRate"`
	CategoriesWithEntities []Category          `json:"categoriesWithEntities"`
	Resolutions            []ResolutionOutcome `json:"resolutions,omitempty"`
	Error                  string              `json:"error,omitempty"`
}

// CulturalProfile is the aggregate handed to narrative generation and to callers.
type CulturalProfile struct {
	Themes         []string     `json:"themes"`
	Connections    []Connection `json:"connections"`
	Patterns       []string     `json:"patterns"`
	DiversityScore int          `json:"diversityScore"`
	CulturalDepth  int          `json:"culturalDepth"`
	QlooInsights   QlooInsights `json:"qlooInsights"`
}

// CulturalNarrative is the validated response of the narrative generator.
type CulturalNarrative struct {
	Title                string   `json:"title"`
	Story                string   `json:"story"`
	Insights             []string `json:"insights"`
	Personality          string   `json:"personality"`
	CulturalDNA          string   `json:"culturalDNA"`
	Recommendations      []string `json:"recommendations"`
	EvolutionPredictions []string `json:"evolutionPredictions,omitempty"`
	CulturalBlindSpots   []string `json:"culturalBlindSpots,omitempty"`
	DiversityScore       *int     `json:"diversityScore,omitempty"`
}
