package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"history-trivia/internal/content"
	"history-trivia/internal/quiz"
)

// Import payloads are full serialized progress records; 1 MiB is generous.
const maxImportBytes = 1 << 20

func (a *API) HandleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	defer r.Body.Close()

	var request startRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	difficulty, err := content.ParseDifficulty(request.Difficulty)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "difficulty must be beginner, intermediate or advanced"})
		return
	}

	if err := a.manager.Start(difficulty); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, startResponse{
		Difficulty:    difficulty,
		QuestionCount: a.manager.TotalQuestions(),
	})
}

func (a *API) HandleQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	question, ok := a.manager.CurrentQuestion()
	if !ok {
		writeServiceError(w, quiz.ErrNoActiveSession)
		return
	}

	writeJSON(w, http.StatusOK, questionResponse{
		QuestionNumber: a.manager.QuestionNumber(),
		QuestionCount:  a.manager.TotalQuestions(),
		ProgressPct:    a.manager.Progress(),
		Category:       question.Category,
		Difficulty:     question.Difficulty,
		Prompt:         question.Prompt,
		Options:        question.Options,
	})
}

func (a *API) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	defer r.Body.Close()

	var request answerRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if request.OptionIndex == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "option_index is required"})
		return
	}

	feedback, err := a.manager.CheckAnswer(*request.OptionIndex)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if feedback == nil {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "question already answered"})
		return
	}

	writeJSON(w, http.StatusOK, feedback)
}

func (a *API) HandleNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	if a.manager.State() != quiz.StateInProgress {
		writeServiceError(w, quiz.ErrNoActiveSession)
		return
	}

	writeJSON(w, http.StatusOK, nextResponse{HasNext: a.manager.Next()})
}

func (a *API) HandleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	results, err := a.manager.Results(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func (a *API) HandleAbandon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	a.manager.Abandon()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) HandleOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	record, err := a.engine.Overview(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (a *API) HandleBadges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	badges, err := a.engine.AllBadges(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, badgesResponse{Badges: badges})
}

func (a *API) HandleFigures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	record, err := a.engine.Overview(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	figures := a.catalog.Figures()
	response := figuresResponse{Figures: make([]figureResponse, 0, len(figures))}
	for _, figure := range figures {
		response.Figures = append(response.Figures, figureResponse{
			Figure:   figure,
			Unlocked: record.HasFigure(figure.ID),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

func (a *API) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	document, err := a.engine.Export(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="history-trivia-progress.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(document)
}

func (a *API) HandleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	defer r.Body.Close()

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
		return
	}

	if err := a.engine.Import(r.Context(), data); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
