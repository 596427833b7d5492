package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"history-trivia/internal/progress"
	"history-trivia/internal/quiz"
)

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrNoQuestions):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no questions match the requested difficulty"})
	case errors.Is(err, quiz.ErrNoActiveSession):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "no quiz session in progress"})
	case errors.Is(err, quiz.ErrSessionNotDone):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "session still has unanswered questions"})
	case errors.Is(err, progress.ErrInvalidImport):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

func writeMethodNotAllowed(w http.ResponseWriter, allowedMethod string) {
	w.Header().Set("Allow", allowedMethod)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
