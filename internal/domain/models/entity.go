package models

import (
	"encoding/json"
	"strings"
)

// RawEntity is the loosely-typed entity payload returned by the cultural graph
// provider. Field shapes vary between endpoints (entity_id vs id, tag objects
// vs plain strings), so all call sites normalize through Normalize below.
type RawEntity struct {
	ID         string       `json:"id"`
	EntityID   string       `json:"entity_id"`
	Name       string       `json:"name"`
	Popularity *float64     `json:"popularity"`
	Types      []string     `json:"types"`
	Location   *RawLocation `json:"location"`
	Tags       RawTags      `json:"tags"`
}

// RawLocation is the provider's optional geo block.
type RawLocation struct {
	Country string `json:"country"`
}

// RawTags accepts both plain-string tags and tag objects ({"name": ...} or
// {"tag_id": ...}) and flattens them to plain text.
type RawTags []string

func (t *RawTags) UnmarshalJSON(data []byte) error {
	var plain []string
	if err := json.Unmarshal(data, &plain); err == nil {
		*t = plain
		return nil
	}

	var objects []struct {
		Name  string `json:"name"`
		TagID string `json:"tag_id"`
	}
	if err := json.Unmarshal(data, &objects); err != nil {
		return err
	}
	for _, o := range objects {
		if o.Name != "" {
			*t = append(*t, o.Name)
		} else if o.TagID != "" {
			*t = append(*t, o.TagID)
		}
	}
	return nil
}

// Recommendation is a scored cross-domain suggestion from the provider.
type Recommendation struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// providerTypeCategories maps the provider's urn type taxonomy back into the
// five-domain enum.
var providerTypeCategories = map[string]Category{
	"urn:entity:artist":      CategoryMusic,
	"urn:entity:album":       CategoryMusic,
	"urn:entity:movie":       CategoryMovies,
	"urn:entity:tv_show":     CategoryMovies,
	"urn:entity:place":       CategoryFood,
	"urn:entity:restaurant":  CategoryFood,
	"urn:entity:destination": CategoryTravel,
	"urn:entity:locality":    CategoryTravel,
	"urn:entity:book":        CategoryBooks,
	"urn:entity:author":      CategoryBooks,
}

// Normalize converts a raw provider entity into the canonical ResolvedEntity
// shape. It returns false when the payload carries no usable identity.
// fallback names the category to assume when the provider types are unmapped
// (typically the category the search was filtered to).
func (r RawEntity) Normalize(fallback Category) (ResolvedEntity, bool) {
	id := r.EntityID
	if id == "" {
		id = r.ID
	}
	name := strings.TrimSpace(r.Name)
	if id == "" || name == "" {
		return ResolvedEntity{}, false
	}

	category := fallback
	for _, t := range r.Types {
		if c, ok := providerTypeCategories[t]; ok {
			category = c
			break
		}
	}

	var popularity *float64
	if r.Popularity != nil {
		p := *r.Popularity
		if p < 0 {
			p = 0
		} else if p > 1 {
			p = 1
		}
		popularity = &p
	}

	country := ""
	if r.Location != nil {
		country = strings.TrimSpace(r.Location.Country)
	}

	var tags []string
	for _, tag := range r.Tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}

	return ResolvedEntity{
		ID:         id,
		Name:       name,
		Category:   category,
		Popularity: popularity,
		Types:      r.Types,
		Country:    country,
		Tags:       tags,
	}, true
}
