package main

import (
	"log"

	"github.com/tastecanvas/tastecanvas-api/internal/config"
	"github.com/tastecanvas/tastecanvas-api/internal/infrastructure/server"
)

func main() {
	log.Println("Starting TasteCanvas API...")

	// Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
