package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tastecanvas/tastecanvas-api/internal/database"
	"github.com/tastecanvas/tastecanvas-api/internal/domain/models"
	"github.com/tastecanvas/tastecanvas-api/internal/usecase/narrative"
)

// ProfileAggregator builds a cultural profile from raw preferences.
type ProfileAggregator interface {
	Aggregate(ctx context.Context, prefs models.PreferenceSet) (*models.CulturalProfile, error)
}

// NarrativeGateway turns an aggregated profile into narrative content.
type NarrativeGateway interface {
	RequestNarrative(ctx context.Context, prefs models.PreferenceSet, profile *models.CulturalProfile) (*models.CulturalNarrative, error)
	RequestDiscoveries(ctx context.Context, n *models.CulturalNarrative, prefs models.PreferenceSet, profile *models.CulturalProfile) ([]string, error)
	RequestGrowthChallenges(ctx context.Context, prefs models.PreferenceSet, profile *models.CulturalProfile, n *models.CulturalNarrative) ([]string, error)
}

// Server holds the dependencies for the HTTP API server
type Server struct {
	aggregator ProfileAggregator
	gateway    NarrativeGateway
	cache      database.ProfileCacheRepository
	cacheTTL   time.Duration
}

// NewServer initializes a new API server with the required dependencies
func NewServer(aggregator ProfileAggregator, gateway NarrativeGateway, cache database.ProfileCacheRepository, cacheTTL time.Duration) *Server {
	return &Server{
		aggregator: aggregator,
		gateway:    gateway,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

// RegisterRoutes registers all API endpoints with a new ServeMux
func (s *Server) RegisterRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Go 1.22+ supports HTTP method routing directly in ServeMux
	mux.HandleFunc("POST /api/v1/profile", s.handleProfile)
	mux.HandleFunc("GET /api/v1/profile/{key}", s.handleProfileLookup)
	mux.HandleFunc("POST /api/v1/narrative", s.handleNarrative)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return mux
}

type ProfileRequest struct {
	Preferences map[string][]string `json:"preferences"`
}

type ProfileResponse struct {
	Key     string                  `json:"key"`
	Profile *models.CulturalProfile `json:"profile"`
	Cached  bool                    `json:"cached"`
}

type NarrativeRequest struct {
	Key string `json:"key"`
}

type NarrativeResponse struct {
	Key              string                    `json:"key"`
	Narrative        *models.CulturalNarrative `json:"narrative"`
	Discoveries      []string                  `json:"discoveries,omitempty"`
	GrowthChallenges []string                  `json:"growthChallenges,omitempty"`
}

// profileDocument is the cached payload: the profile plus the preferences it
// was built from, so narrative generation can run off the cache alone.
type profileDocument struct {
	Preferences models.PreferenceSet    `json:"preferences"`
	Profile     *models.CulturalProfile `json:"profile"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	prefs, err := parsePreferences(req.Preferences)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key := preferenceKey(prefs)

	if cached, err := s.cache.GetProfile(r.Context(), key); err == nil {
		var doc profileDocument
		if decodeErr := json.Unmarshal(cached.Payload, &doc); decodeErr != nil {
			log.Printf("[Server] Discarding unreadable cache entry %s: %v", key, decodeErr)
		} else {
			writeJSON(w, http.StatusOK, ProfileResponse{Key: key, Profile: doc.Profile, Cached: true})
			return
		}
	}

	profile, err := s.aggregator.Aggregate(r.Context(), prefs)
	if err != nil {
		log.Printf("[Server] Aggregation aborted for %s: %v", key, err)
		http.Error(w, "Aggregation did not complete", http.StatusServiceUnavailable)
		return
	}

	// A degraded profile reflects a provider outage, not the user's tastes;
	// caching it would pin the placeholder for the whole TTL.
	if profile.QlooInsights.Error == "" {
		payload, err := json.Marshal(profileDocument{Preferences: prefs, Profile: profile})
		if err != nil {
			http.Error(w, "Failed to encode profile", http.StatusInternalServerError)
			return
		}
		if err := s.cache.PutProfile(r.Context(), key, payload, s.cacheTTL); err != nil {
			log.Printf("[Server] Failed to cache profile %s: %v", key, err)
		}
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Key: key, Profile: profile, Cached: false})
}

func (s *Server) handleProfileLookup(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		http.Error(w, "Profile key required", http.StatusBadRequest)
		return
	}

	cached, err := s.cache.GetProfile(r.Context(), key)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "Profile not found", http.StatusNotFound)
			return
		}
		log.Printf("[Server] Cache lookup failed for %s: %v", key, err)
		http.Error(w, "Failed to read cache", http.StatusInternalServerError)
		return
	}

	var doc profileDocument
	if err := json.Unmarshal(cached.Payload, &doc); err != nil {
		log.Printf("[Server] Corrupt cache entry %s: %v", key, err)
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{Key: key, Profile: doc.Profile, Cached: true})
}

func (s *Server) handleNarrative(w http.ResponseWriter, r *http.Request) {
	var req NarrativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Key == "" {
		http.Error(w, "Profile key is required", http.StatusBadRequest)
		return
	}

	cached, err := s.cache.GetProfile(r.Context(), req.Key)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "Profile not found; aggregate it first", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to read cache", http.StatusInternalServerError)
		return
	}

	var doc profileDocument
	if err := json.Unmarshal(cached.Payload, &doc); err != nil {
		http.Error(w, "Profile not found; aggregate it first", http.StatusNotFound)
		return
	}

	// Serve the previously generated narrative instead of billing the
	// generator again for the same preference set.
	if len(cached.Narrative) > 0 {
		var stored NarrativeResponse
		if err := json.Unmarshal(cached.Narrative, &stored); err == nil && stored.Narrative != nil {
			writeJSON(w, http.StatusOK, stored)
			return
		}
		log.Printf("[Server] Ignoring unreadable stored narrative for %s", req.Key)
	}

	story, err := s.gateway.RequestNarrative(r.Context(), doc.Preferences, doc.Profile)
	if err != nil {
		switch {
		case errors.Is(err, narrative.ErrNarrativeFormat):
			log.Printf("[Server] Narrative generator returned garbage for %s: %v", req.Key, err)
			http.Error(w, "Narrative generator returned an invalid response", http.StatusBadGateway)
		default:
			log.Printf("[Server] Narrative generator unreachable for %s: %v", req.Key, err)
			http.Error(w, "Narrative generator unavailable", http.StatusServiceUnavailable)
		}
		return
	}

	resp := NarrativeResponse{Key: req.Key, Narrative: story}

	// Enrichment lists are best-effort; the narrative itself is not.
	if discoveries, err := s.gateway.RequestDiscoveries(r.Context(), story, doc.Preferences, doc.Profile); err == nil {
		resp.Discoveries = discoveries
	} else {
		log.Printf("[Server] Skipping discoveries for %s: %v", req.Key, err)
	}
	if challenges, err := s.gateway.RequestGrowthChallenges(r.Context(), doc.Preferences, doc.Profile, story); err == nil {
		resp.GrowthChallenges = challenges
	} else {
		log.Printf("[Server] Skipping growth challenges for %s: %v", req.Key, err)
	}

	if blob, err := json.Marshal(resp); err == nil {
		if err := s.cache.AttachNarrative(r.Context(), req.Key, blob); err != nil {
			log.Printf("[Server] Failed to attach narrative to %s: %v", req.Key, err)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parsePreferences validates and normalizes the raw request map into a
// PreferenceSet: known categories only, trimmed non-empty items, at most
// five per category, at least one overall.
func parsePreferences(raw map[string][]string) (models.PreferenceSet, error) {
	prefs := models.PreferenceSet{}
	for name, items := range raw {
		if !models.IsValidCategory(name) {
			return nil, errors.New("unknown category: " + name)
		}
		category := models.Category(name)
		var cleaned []string
		for _, item := range items {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > models.MaxItemsPerCategory {
			return nil, errors.New("too many items for category " + name)
		}
		if len(cleaned) > 0 {
			prefs[category] = cleaned
		}
	}
	if prefs.TotalItems() == 0 {
		return nil, errors.New("at least one preference is required")
	}
	return prefs, nil
}

// preferenceKey derives a stable cache key from the normalized preferences.
// Categories are serialized in canonical order so equal sets hash equally.
func preferenceKey(prefs models.PreferenceSet) string {
	h := sha256.New()
	for _, c := range models.Categories() {
		items := prefs[c]
		if len(items) == 0 {
			continue
		}
		h.Write([]byte(c))
		for _, item := range items {
			h.Write([]byte{0})
			h.Write([]byte(item))
		}
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
