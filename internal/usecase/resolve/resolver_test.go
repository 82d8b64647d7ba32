package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/tastecanvas/tastecanvas-api/internal/domain/models"
	"github.com/tastecanvas/tastecanvas-api/internal/domain/repository"
)

func f64(v float64) *float64 { return &v }

// mockGraph returns canned results per query and records call counts.
type mockGraph struct {
	results map[string][]models.RawEntity
	err     error
	calls   []string
}

func (m *mockGraph) Search(ctx context.Context, query string, category models.Category, limit int) ([]models.RawEntity, error) {
	m.calls = append(m.calls, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.results[query], nil
}

func (m *mockGraph) Recommend(ctx context.Context, seedIDs []string, target models.Category, limit int) ([]models.Recommendation, error) {
	return nil, nil
}

func TestResolve_BestMatch(t *testing.T) {
	graph := &mockGraph{results: map[string][]models.RawEntity{
		"Billie Eilish": {
			{EntityID: "A1", Name: "Billie Eilish", Popularity: f64(0.98), Types: []string{"urn:entity:artist"}},
			{EntityID: "A2", Name: "Billie Eilish Tribute Band", Popularity: f64(0.12)},
		},
	}}
	resolver := NewResolver(graph, 5)

	entity, outcome, err := resolver.Resolve(context.Background(), "Billie Eilish", models.CategoryMusic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entity == nil {
		t.Fatal("expected a resolved entity")
	}
	if entity.ID != "A1" {
		t.Errorf("expected exact match A1, got %s", entity.ID)
	}
	if entity.Category != models.CategoryMusic {
		t.Errorf("expected music category, got %s", entity.Category)
	}
	if !outcome.Matched || outcome.Score != 1.0 {
		t.Errorf("unexpected outcome: %+v", outcome)
	}
}

func TestResolve_NoMatchIsNotAnError(t *testing.T) {
	// Scenario: nonsense query; all variations and fallbacks return nothing
	graph := &mockGraph{results: map[string][]models.RawEntity{}}
	resolver := NewResolver(graph, 5)

	entity, outcome, err := resolver.Resolve(context.Background(), "xyzabc123nonsense", models.CategoryMusic)
	if err != nil {
		t.Fatalf("expected no error for a miss, got %v", err)
	}
	if entity != nil {
		t.Errorf("expected nil entity, got %+v", entity)
	}
	if outcome.Matched {
		t.Errorf("expected unmatched outcome, got %+v", outcome)
	}
}

func TestResolve_AttemptBudget(t *testing.T) {
	graph := &mockGraph{results: map[string][]models.RawEntity{}}
	resolver := NewResolver(graph, 3)

	_, _, _ = resolver.Resolve(context.Background(), "one two three four five six", models.CategoryBooks)

	// 3 variation attempts plus fallback searches (2 keywords + 1 generic)
	if len(graph.calls) > 6 {
		t.Errorf("expected at most 6 provider calls, got %d: %v", len(graph.calls), graph.calls)
	}
}

func TestResolve_FallbackOnWeakResults(t *testing.T) {
	graph := &mockGraph{results: map[string][]models.RawEntity{
		"popular books": {
			{EntityID: "B1", Name: "A Very Popular Novel", Popularity: f64(0.9), Tags: models.RawTags{"obscurething"}},
		},
	}}
	resolver := NewResolver(graph, 5)

	entity, _, err := resolver.Resolve(context.Background(), "obscurething", models.CategoryBooks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entity == nil {
		t.Fatal("expected fallback entity above the relaxed threshold")
	}
	if entity.ID != "B1" {
		t.Errorf("expected B1 from fallback search, got %s", entity.ID)
	}
}

func TestResolve_TransportFailuresTripBreaker(t *testing.T) {
	graph := &mockGraph{err: repository.ErrProviderUnavailable}
	resolver := NewResolver(graph, 5)

	entity, _, err := resolver.Resolve(context.Background(), "some long query here", models.CategoryMovies)
	if entity != nil {
		t.Errorf("expected nil entity, got %+v", entity)
	}
	if !errors.Is(err, repository.ErrProviderUnavailable) {
		t.Errorf("expected provider-unavailable error, got %v", err)
	}
	// Breaker opens after 3 consecutive failures and skips the rest,
	// including the fallback searches
	if len(graph.calls) != 3 {
		t.Errorf("expected exactly 3 calls before breaker opened, got %d: %v", len(graph.calls), graph.calls)
	}
}

func TestResolve_UnauthorizedSurfacesImmediately(t *testing.T) {
	graph := &mockGraph{err: repository.ErrProviderUnauthorized}
	resolver := NewResolver(graph, 5)

	_, _, err := resolver.Resolve(context.Background(), "anything", models.CategoryMusic)
	if !errors.Is(err, repository.ErrProviderUnauthorized) {
		t.Errorf("expected unauthorized error, got %v", err)
	}
	if len(graph.calls) != 1 {
		t.Errorf("expected a single call before surfacing, got %d", len(graph.calls))
	}
}

func TestResolve_DeduplicatesByEntityID(t *testing.T) {
	// Same entity returned under two variations with different scores
	graph := &mockGraph{results: map[string][]models.RawEntity{
		"Dune":      {{EntityID: "B9", Name: "Dune", Popularity: f64(0.85)}},
		"dune":      {{EntityID: "B9", Name: "Dune", Popularity: f64(0.85)}},
		"Dune part": {{EntityID: "B9", Name: "Dune", Popularity: f64(0.85)}},
	}}
	resolver := NewResolver(graph, 5)

	entity, outcome, err := resolver.Resolve(context.Background(), "Dune", models.CategoryBooks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entity == nil || entity.ID != "B9" {
		t.Fatalf("expected B9, got %+v", entity)
	}
	if outcome.Score != 1.0 {
		t.Errorf("expected best score kept after dedupe, got %v", outcome.Score)
	}
}

func TestResolve_CancelledContext(t *testing.T) {
	graph := &mockGraph{results: map[string][]models.RawEntity{}}
	resolver := NewResolver(graph, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := resolver.Resolve(ctx, "anything", models.CategoryMusic)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
