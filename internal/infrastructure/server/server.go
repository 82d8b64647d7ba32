package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/tastecanvas/tastecanvas-api/internal/config"
	"github.com/tastecanvas/tastecanvas-api/internal/database/bunstore"
	"github.com/tastecanvas/tastecanvas-api/internal/domain/repository"
	"github.com/tastecanvas/tastecanvas-api/internal/infrastructure/llm"
	"github.com/tastecanvas/tastecanvas-api/internal/infrastructure/qloo"
	httpserver "github.com/tastecanvas/tastecanvas-api/internal/server"
	"github.com/tastecanvas/tastecanvas-api/internal/usecase/connect"
	"github.com/tastecanvas/tastecanvas-api/internal/usecase/narrative"
	"github.com/tastecanvas/tastecanvas-api/internal/usecase/profile"
	"github.com/tastecanvas/tastecanvas-api/internal/usecase/resolve"
)

type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	dbConn     *sql.DB
}

func New(cfg *config.Config) *Server {
	return &Server{
		cfg: cfg,
	}
}

func (s *Server) Run() error {
	ctx := context.Background()

	// ==========================================
	// Initialize Dependencies (Dependency Injection)
	// ==========================================

	qlooClient, err := qloo.NewClient(s.cfg.QlooBaseURL, s.cfg.QlooAPIKey, s.cfg.QlooRPS)
	if err != nil {
		return err
	}
	log.Printf("[System] 🌍 Cultural graph client ready (%s)", s.cfg.QlooBaseURL)

	var llmClient repository.LLMClient
	if s.cfg.UseLocalLLM {
		log.Println("[System] 🏠 TC_USE_LOCAL_LLM is true. Using local Ollama for narratives.")
		llmClient = llm.NewLocalOllamaClient(s.cfg.OllamaHost, s.cfg.OllamaModel)
	} else {
		geminiClient, err := llm.NewGeminiClient(ctx, s.cfg.GeminiAPIKey, s.cfg.GeminiModel)
		if err != nil {
			return err
		}
		defer func() { _ = geminiClient.Close() }()
		llmClient = geminiClient
	}
	log.Printf("[System] 🧠 Narrative generator: %s", llmClient.Name())

	// Profile cache (SQLite via bun)
	s.dbConn, err = sql.Open(sqliteshim.ShimName, s.cfg.CacheDBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.dbConn.Close(); closeErr != nil {
			log.Printf("[Warning] Failed to close database: %v", closeErr)
		}
	}()

	cache, err := bunstore.NewBunStore(s.dbConn, sqlitedialect.New())
	if err != nil {
		return err
	}
	if purged, err := cache.PurgeExpired(ctx); err != nil {
		log.Printf("[Warning] Cache purge failed: %v", err)
	} else if purged > 0 {
		log.Printf("[System] 🧹 Purged %d expired cache entries", purged)
	}

	// Usecases
	resolver := resolve.NewResolver(qlooClient, s.cfg.ResolveMaxAttempts)
	analyzer := connect.NewAnalyzer(qlooClient, connect.DefaultWeights())
	aggregator := profile.NewAggregator(resolver, analyzer)
	gateway := narrative.NewGateway(llmClient)

	// ==========================================
	// Initialize and Start HTTP Server
	// ==========================================

	apiServer := httpserver.NewServer(aggregator, gateway, cache, s.cfg.CacheTTL)
	handler := apiServer.RegisterRoutes()

	addr := fmt.Sprintf(":%d", s.cfg.APIPort)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.cfg.DefaultTimeout,
	}

	// Listen for shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("[System] 🌐 Starting REST API Server on %s", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Error] HTTP server failed: %v", err)
		}
	}()

	<-stop
	log.Println("[System] 🛑 Shutdown signal received. Draining connections...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Error] HTTP shutdown error: %v", err)
	}

	log.Println("[System] ✅ Server stopped gracefully.")
	return nil
}
