package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tastecanvas/tastecanvas-api/internal/domain/models"
	"github.com/tastecanvas/tastecanvas-api/internal/domain/repository"
)

var (
	// ErrNarrativeProvider means the generator was unreachable or refused the
	// request. Callers may retry.
	ErrNarrativeProvider = errors.New("narrative provider failure")

	// ErrNarrativeFormat means the generator responded but the payload does
	// not match the expected shape. The response is discarded, never patched
	// with placeholder content.
	ErrNarrativeFormat = errors.New("narrative response malformed")
)

// Gateway shapes aggregated profiles into generator requests and validates
// the structured responses. One attempt per call, no retry.
type Gateway struct {
	llm repository.LLMClient
}

func NewGateway(llm repository.LLMClient) *Gateway {
	return &Gateway{llm: llm}
}

// RequestNarrative asks the generator for the full cultural identity story.
func (g *Gateway) RequestNarrative(ctx context.Context, prefs models.PreferenceSet, profile *models.CulturalProfile) (*models.CulturalNarrative, error) {
	prompt, err := narrativePrompt(prefs, profile)
	if err != nil {
		return nil, err
	}

	raw, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNarrativeProvider, err)
	}

	narrative, err := parseNarrative(raw)
	if err != nil {
		log.Printf("[Narrative] Rejected response from %s: %v", g.llm.Name(), err)
		return nil, err
	}
	return narrative, nil
}

// RequestDiscoveries asks for a short list of cross-domain recommendations the
// user likely has not encountered yet.
func (g *Gateway) RequestDiscoveries(ctx context.Context, narrative *models.CulturalNarrative, prefs models.PreferenceSet, profile *models.CulturalProfile) ([]string, error) {
	prompt, err := discoveriesPrompt(narrative, prefs, profile)
	if err != nil {
		return nil, err
	}
	return g.requestStringList(ctx, prompt, "discoveries")
}

// RequestGrowthChallenges asks for concrete challenges that would broaden the
// user's cultural range.
func (g *Gateway) RequestGrowthChallenges(ctx context.Context, prefs models.PreferenceSet, profile *models.CulturalProfile, narrative *models.CulturalNarrative) ([]string, error) {
	prompt, err := challengesPrompt(prefs, profile, narrative)
	if err != nil {
		return nil, err
	}
	return g.requestStringList(ctx, prompt, "challenges")
}

func (g *Gateway) requestStringList(ctx context.Context, prompt, field string) ([]string, error) {
	raw, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNarrativeProvider, err)
	}

	var payload map[string][]string
	if err := json.Unmarshal([]byte(cleanResponse(raw)), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNarrativeFormat, err)
	}

	items := payload[field]
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: missing or empty %q list", ErrNarrativeFormat, field)
	}
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			return nil, fmt.Errorf("%w: blank entry in %q list", ErrNarrativeFormat, field)
		}
	}
	return items, nil
}

func parseNarrative(raw string) (*models.CulturalNarrative, error) {
	var narrative models.CulturalNarrative
	if err := json.Unmarshal([]byte(cleanResponse(raw)), &narrative); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNarrativeFormat, err)
	}
	if err := validateNarrative(&narrative); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNarrativeFormat, err)
	}
	return &narrative, nil
}

func validateNarrative(n *models.CulturalNarrative) error {
	required := map[string]string{
		"title":       n.Title,
		"story":       n.Story,
		"personality": n.Personality,
		"culturalDNA": n.CulturalDNA,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("missing required field %q", field)
		}
	}
	if len(n.Insights) == 0 {
		return errors.New("missing insights")
	}
	if len(n.Recommendations) == 0 {
		return errors.New("missing recommendations")
	}
	if n.DiversityScore != nil && (*n.DiversityScore < 0 || *n.DiversityScore > 100) {
		return fmt.Errorf("diversity score %d out of range", *n.DiversityScore)
	}
	return nil
}

// cleanResponse strips the markdown code fences some generators wrap around
// JSON output.
func cleanResponse(resp string) string {
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	return strings.TrimSpace(resp)
}
