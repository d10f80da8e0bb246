package main

import (
	"log"

	"github.com/joho/godotenv"

	"mrrdash/internal/config"
	"mrrdash/ui"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	app, err := ui.NewApp(cfg)
	if err != nil {
		log.Fatal("Failed to create UI app: ", err)
	}

	log.Printf("Starting mrrdash on http://localhost:%s", cfg.Server.Port)
	log.Fatal(app.Start())
}
