package connect

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tastecanvas/tastecanvas-api/internal/domain/models"
)

func f64(v float64) *float64 { return &v }

type mockGraph struct {
	recs    []models.Recommendation
	recErr  error
	seedIDs []string
}

func (m *mockGraph) Search(ctx context.Context, query string, category models.Category, limit int) ([]models.RawEntity, error) {
	return nil, nil
}

func (m *mockGraph) Recommend(ctx context.Context, seedIDs []string, target models.Category, limit int) ([]models.Recommendation, error) {
	m.seedIDs = seedIDs
	if m.recErr != nil {
		return nil, m.recErr
	}
	return m.recs, nil
}

func TestAnalyze_ProviderSignal(t *testing.T) {
	graph := &mockGraph{recs: []models.Recommendation{
		{ID: "M1", Score: 0.9},
		{ID: "M2", Score: 0.7},
		{ID: "M3", Score: 0.5},
	}}
	analyzer := NewAnalyzer(graph, Weights{})

	e1 := []models.ResolvedEntity{{ID: "A1", Name: "Billie Eilish", Popularity: f64(0.95)}}
	e2 := []models.ResolvedEntity{{ID: "F1", Name: "Parasite", Popularity: f64(0.9)}}

	conn := analyzer.Analyze(context.Background(), models.CategoryMusic, models.CategoryMovies, e1, e2)

	// 3/5 * 0.7 + 0.7 * 0.3 = 0.63
	want := 0.63
	if diff := conn.Strength - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected strength %v, got %v", want, conn.Strength)
	}
	if !strings.Contains(conn.Explanation, "thematic connections") {
		t.Errorf("expected provider explanation, got %q", conn.Explanation)
	}
	if len(conn.RelatedEntityIDs) != 4 {
		t.Errorf("expected seeds + recommendations, got %v", conn.RelatedEntityIDs)
	}
	if len(graph.seedIDs) != 1 || graph.seedIDs[0] != "A1" {
		t.Errorf("expected seed A1, got %v", graph.seedIDs)
	}
}

func TestAnalyze_ProviderStrengthCapped(t *testing.T) {
	var recs []models.Recommendation
	for i := 0; i < 5; i++ {
		recs = append(recs, models.Recommendation{ID: "R", Score: 1.0})
	}
	analyzer := NewAnalyzer(&mockGraph{recs: recs}, Weights{})

	e1 := []models.ResolvedEntity{{ID: "A1"}}
	conn := analyzer.Analyze(context.Background(), models.CategoryMusic, models.CategoryMovies, e1, nil)

	if conn.Strength != 0.95 {
		t.Errorf("expected capped strength 0.95, got %v", conn.Strength)
	}
}

func TestAnalyze_HeuristicFallback(t *testing.T) {
	// Scenario: two high-popularity entities, no shared tags or countries;
	// provider has no recommendation signal
	analyzer := NewAnalyzer(&mockGraph{}, Weights{})

	e1 := []models.ResolvedEntity{{ID: "A1", Name: "Billie Eilish", Popularity: f64(0.95), Tags: []string{"pop"}}}
	e2 := []models.ResolvedEntity{{ID: "F1", Name: "Parasite", Popularity: f64(0.9), Tags: []string{"thriller"}, Country: "KR"}}

	conn := analyzer.Analyze(context.Background(), models.CategoryMusic, models.CategoryMovies, e1, e2)

	// 0.4 * (1 - 0.05) + 0.1 base = 0.48; location and tags contribute 0
	if conn.Strength < MinStrength || conn.Strength > 0.5 {
		t.Errorf("expected heuristic strength in (0.1, 0.5], got %v", conn.Strength)
	}
	if !strings.Contains(conn.Explanation, "similarity") {
		t.Errorf("expected similarity explanation, got %q", conn.Explanation)
	}
	if strings.Contains(conn.Explanation, "recommendation") {
		t.Errorf("fallback explanation must not claim a recommendation signal: %q", conn.Explanation)
	}
}

func TestAnalyze_ProviderErrorDegradesToHeuristic(t *testing.T) {
	analyzer := NewAnalyzer(&mockGraph{recErr: errors.New("boom")}, Weights{})

	e1 := []models.ResolvedEntity{{ID: "A1", Popularity: f64(0.5)}}
	e2 := []models.ResolvedEntity{{ID: "F1", Popularity: f64(0.5)}}

	conn := analyzer.Analyze(context.Background(), models.CategoryMusic, models.CategoryMovies, e1, e2)

	if conn.Strength <= 0 || conn.Strength > 1 {
		t.Errorf("strength out of bounds: %v", conn.Strength)
	}
	if !strings.Contains(conn.Explanation, "similarity") {
		t.Errorf("expected heuristic explanation after provider error, got %q", conn.Explanation)
	}
}

func TestAnalyze_BothGroupsEmpty(t *testing.T) {
	analyzer := NewAnalyzer(&mockGraph{}, Weights{})

	conn := analyzer.Analyze(context.Background(), models.CategoryFood, models.CategoryTravel, nil, nil)

	if conn.Strength != placeholderStrength {
		t.Errorf("expected placeholder strength %v, got %v", placeholderStrength, conn.Strength)
	}
	if !strings.Contains(conn.Explanation, "Potential") {
		t.Errorf("expected tentative explanation, got %q", conn.Explanation)
	}
}

func TestAnalyze_SharedTagsAndCountryBoost(t *testing.T) {
	analyzer := NewAnalyzer(&mockGraph{}, Weights{})

	base1 := []models.ResolvedEntity{{ID: "A1", Popularity: f64(0.8), Tags: []string{"pop"}}}
	base2 := []models.ResolvedEntity{{ID: "F1", Popularity: f64(0.8), Tags: []string{"noir"}}}
	without := analyzer.Analyze(context.Background(), models.CategoryMusic, models.CategoryMovies, base1, base2)

	boosted1 := []models.ResolvedEntity{{ID: "A1", Popularity: f64(0.8), Tags: []string{"pop"}, Country: "US"}}
	boosted2 := []models.ResolvedEntity{{ID: "F1", Popularity: f64(0.8), Tags: []string{"pop"}, Country: "US"}}
	with := analyzer.Analyze(context.Background(), models.CategoryMusic, models.CategoryMovies, boosted1, boosted2)

	if with.Strength <= without.Strength {
		t.Errorf("shared tags and country should raise strength: %v vs %v", with.Strength, without.Strength)
	}
}

func TestAnalyze_StrengthBounds(t *testing.T) {
	analyzer := NewAnalyzer(&mockGraph{}, Weights{})

	cases := [][2][]models.ResolvedEntity{
		{nil, nil},
		{{{ID: "1"}}, nil},
		{nil, {{ID: "2", Popularity: f64(1.0)}}},
		{{{ID: "1", Popularity: f64(0)}}, {{ID: "2", Popularity: f64(1.0)}}},
		{{{ID: "1", Country: "FR", Tags: []string{"x"}}}, {{ID: "2", Country: "FR", Tags: []string{"x"}}}},
	}

	for i, tc := range cases {
		conn := analyzer.Analyze(context.Background(), models.CategoryMusic, models.CategoryBooks, tc[0], tc[1])
		if conn.Strength <= 0 || conn.Strength > 1 {
			t.Errorf("case %d: strength out of bounds: %v", i, conn.Strength)
		}
	}
}
