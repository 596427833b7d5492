package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"history-trivia/internal/cli"
	"history-trivia/internal/content"
	"history-trivia/internal/progress"
	"history-trivia/internal/progress/sqlite"
	"history-trivia/internal/quiz"
)

func main() {
	dbPath := flag.String("db", "trivia.db", "sqlite database path")
	questionsPath := flag.String("questions", "data/questions.json", "questions catalog file")
	figuresPath := flag.String("figures", "data/figures.json", "figures catalog file")
	flag.Parse()

	catalog, err := content.Load(*questionsPath, *figuresPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	store, err := sqlite.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer store.Close()

	engine := progress.NewEngine(store)
	manager := quiz.NewManager(engine, catalog)

	if err := cli.Run(context.Background(), os.Stdin, os.Stdout, manager, engine); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
