package httpapi

import (
	"history-trivia/internal/content"
	"history-trivia/internal/progress"
)

type startRequest struct {
	Difficulty string `json:"difficulty"`
}

type startResponse struct {
	Difficulty    content.Difficulty `json:"difficulty"`
	QuestionCount int                `json:"question_count"`
}

type questionResponse struct {
	QuestionNumber int                `json:"question_number"`
	QuestionCount  int                `json:"question_count"`
	ProgressPct    int                `json:"progress_pct"`
	Category       string             `json:"category"`
	Difficulty     content.Difficulty `json:"difficulty"`
	Prompt         string             `json:"prompt"`
	Options        []string           `json:"options"`
}

type answerRequest struct {
	OptionIndex *int `json:"option_index"`
}

type nextResponse struct {
	HasNext bool `json:"has_next"`
}

type figureResponse struct {
	content.Figure
	Unlocked bool `json:"unlocked"`
}

type figuresResponse struct {
	Figures []figureResponse `json:"figures"`
}

type badgesResponse struct {
	Badges []progress.BadgeStatus `json:"badges"`
}

type errorResponse struct {
	Error string `json:"error"`
}
