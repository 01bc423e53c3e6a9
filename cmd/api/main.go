package main

import (
	"log"

	"github.com/tahazakir/corpusqa/internal/config"
	"github.com/tahazakir/corpusqa/internal/server"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

func main() {
	// Load environment files explicitly
	envFiles := []string{".env.local", ".env.development", ".env"}
	config.LoadEnvFiles(envFiles)

	// Load configuration from YAML
	cfg, err := config.LoadFromFile("config.yaml")
	if err != nil {
		fiberlog.Fatalf("Failed to load config: %v", err)
	}

	srv := server.New(cfg)

	log.Println("Starting corpusqa server...")
	if err := srv.Run(); err != nil {
		fiberlog.Fatalf("Server failed: %v", err)
	}
}
