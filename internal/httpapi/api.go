package httpapi

import (
	"history-trivia/internal/content"
	"history-trivia/internal/progress"
	"history-trivia/internal/quiz"
)

// API adapts the quiz session manager and progression engine for a browser
// frontend. The session is single-user, matching the one-record-per-install
// persistence model.
type API struct {
	manager *quiz.Manager
	engine  *progress.Engine
	catalog *content.Catalog
}

func NewAPI(manager *quiz.Manager, engine *progress.Engine, catalog *content.Catalog) *API {
	return &API{
		manager: manager,
		engine:  engine,
		catalog: catalog,
	}
}
