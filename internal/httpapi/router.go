package httpapi

import (
	"net/http"

	"history-trivia/internal/content"
	"history-trivia/internal/progress"
	"history-trivia/internal/quiz"
)

func NewRouter(manager *quiz.Manager, engine *progress.Engine, catalog *content.Catalog) http.Handler {
	api := NewAPI(manager, engine, catalog)

	mux := http.NewServeMux()
	mux.HandleFunc("/quiz/start", api.HandleStart)
	mux.HandleFunc("/quiz/question", api.HandleQuestion)
	mux.HandleFunc("/quiz/answer", api.HandleAnswer)
	mux.HandleFunc("/quiz/next", api.HandleNext)
	mux.HandleFunc("/quiz/results", api.HandleResults)
	mux.HandleFunc("/quiz/abandon", api.HandleAbandon)
	mux.HandleFunc("/progress", api.HandleOverview)
	mux.HandleFunc("/progress/export", api.HandleExport)
	mux.HandleFunc("/progress/import", api.HandleImport)
	mux.HandleFunc("/badges", api.HandleBadges)
	mux.HandleFunc("/figures", api.HandleFigures)

	return mux
}
