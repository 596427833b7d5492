package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"history-trivia/internal/content"
	"history-trivia/internal/httpapi"
	"history-trivia/internal/progress"
	"history-trivia/internal/progress/sqlite"
	"history-trivia/internal/quiz"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment variables")
	}

	addr := flag.String("addr", envOr("ADDR", ":8080"), "HTTP listen address")
	dbPath := flag.String("db", envOr("DB_PATH", "trivia.db"), "sqlite database path")
	questionsPath := flag.String("questions", envOr("QUESTIONS_PATH", "data/questions.json"), "questions catalog file")
	figuresPath := flag.String("figures", envOr("FIGURES_PATH", "data/figures.json"), "figures catalog file")
	flag.Parse()

	catalog, err := content.Load(*questionsPath, *figuresPath)
	if err != nil {
		log.Fatalf("content catalog unavailable, refusing to start: %v", err)
	}

	store, err := sqlite.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("open progress store: %v", err)
	}
	defer store.Close()

	engine := progress.NewEngine(store)
	if _, err := engine.EnsureProgress(context.Background()); err != nil {
		log.Fatalf("initialize progress record: %v", err)
	}

	manager := quiz.NewManager(engine, catalog)

	server := &http.Server{
		Addr:              *addr,
		Handler:           httpapi.NewRouter(manager, engine, catalog),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("trivia-service listening on %s (%d questions, %d figures)", *addr, len(catalog.Questions()), len(catalog.Figures()))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
