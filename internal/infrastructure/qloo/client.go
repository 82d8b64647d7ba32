package qloo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tastecanvas/tastecanvas-api/internal/domain/models"
	"github.com/tastecanvas/tastecanvas-api/internal/domain/repository"
	"golang.org/x/time/rate"
)

// Error taxonomy for provider calls, re-exported from the repository port so
// adapter and callers agree on error classes.
var (
	ErrUnauthorized = repository.ErrProviderUnauthorized
	ErrRateLimited  = repository.ErrProviderRateLimited
	ErrUnavailable  = repository.ErrProviderUnavailable
)

// categoryFilters maps preference domains to the provider's urn type filters.
var categoryFilters = map[models.Category]string{
	models.CategoryMusic:  "urn:entity:artist",
	models.CategoryMovies: "urn:entity:movie",
	models.CategoryFood:   "urn:entity:place",
	models.CategoryTravel: "urn:entity:destination",
	models.CategoryBooks:  "urn:entity:book",
}

// Client implements repository.CulturalGraphRepository against the Qloo
// insights API. All requests share a pacing limiter so one aggregation run
// cannot exceed the provider's request-rate budget.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a provider client. requestsPerSec bounds outbound call
// pacing; the key and base URL come from configuration, never globals.
func NewClient(baseURL, apiKey string, requestsPerSec float64) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("qloo API key must not be empty")
	}
	if requestsPerSec <= 0 {
		requestsPerSec = 10
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Transport: &RetryTransport{MaxRetries: 2},
			Timeout:   15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 1),
	}, nil
}

type searchResponse struct {
	Results []models.RawEntity `json:"results"`
}

type insightsResponse struct {
	Results struct {
		Entities []struct {
			EntityID string `json:"entity_id"`
			ID       string `json:"id"`
			Query    struct {
				Affinity float64 `json:"affinity"`
			} `json:"query"`
		} `json:"entities"`
	} `json:"results"`
}

// Search queries the provider's entity search endpoint.
func (c *Client) Search(ctx context.Context, query string, category models.Category, limit int) ([]models.RawEntity, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("take", strconv.Itoa(limit))
	if filter, ok := categoryFilters[category]; ok {
		params.Set("types", filter)
	}

	var parsed searchResponse
	if err := c.get(ctx, "/search", params, &parsed); err != nil {
		return nil, err
	}
	return parsed.Results, nil
}

// Recommend queries the provider's cross-domain insights endpoint seeded by
// entity IDs.
func (c *Client) Recommend(ctx context.Context, seedIDs []string, target models.Category, limit int) ([]models.Recommendation, error) {
	if len(seedIDs) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("signal.interests.entities", strings.Join(seedIDs, ","))
	params.Set("take", strconv.Itoa(limit))
	if filter, ok := categoryFilters[target]; ok {
		params.Set("filter.type", filter)
	}

	var parsed insightsResponse
	if err := c.get(ctx, "/v2/insights", params, &parsed); err != nil {
		return nil, err
	}

	var recs []models.Recommendation
	for _, e := range parsed.Results.Entities {
		id := e.EntityID
		if id == "" {
			id = e.ID
		}
		if id == "" {
			continue
		}
		recs = append(recs, models.Recommendation{ID: id, Score: e.Query.Affinity})
	}
	return recs, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create qloo request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := classifyStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode qloo response: %w", err)
	}
	return nil
}

// classifyStatus maps HTTP statuses into the error taxonomy.
func classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		log.Printf("[Qloo] Rate limited (429); treating as no results")
		return ErrRateLimited
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}
}
