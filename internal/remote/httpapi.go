package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"history-trivia/internal/progress"
	"history-trivia/internal/quiz"
)

var ErrServiceUnavailable = errors.New("trivia service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// HTTPClient drives a running trivia-service over its JSON API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type startRequest struct {
	Difficulty string `json:"difficulty"`
}

type startResponse struct {
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"question_count"`
}

type questionResponse struct {
	QuestionNumber int      `json:"question_number"`
	QuestionCount  int      `json:"question_count"`
	ProgressPct    int      `json:"progress_pct"`
	Category       string   `json:"category"`
	Difficulty     string   `json:"difficulty"`
	Prompt         string   `json:"prompt"`
	Options        []string `json:"options"`
}

type answerRequest struct {
	OptionIndex int `json:"option_index"`
}

type nextResponse struct {
	HasNext bool `json:"has_next"`
}

type badgesResponse struct {
	Badges []progress.BadgeStatus `json:"badges"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *HTTPClient) StartQuiz(ctx context.Context, difficulty string) (startResponse, error) {
	var response startResponse
	err := c.doJSON(ctx, http.MethodPost, "/quiz/start", startRequest{Difficulty: difficulty}, &response)
	return response, err
}

func (c *HTTPClient) CurrentQuestion(ctx context.Context) (questionResponse, error) {
	var response questionResponse
	err := c.doJSON(ctx, http.MethodGet, "/quiz/question", nil, &response)
	return response, err
}

func (c *HTTPClient) Answer(ctx context.Context, optionIndex int) (quiz.AnswerFeedback, error) {
	var feedback quiz.AnswerFeedback
	err := c.doJSON(ctx, http.MethodPost, "/quiz/answer", answerRequest{OptionIndex: optionIndex}, &feedback)
	return feedback, err
}

func (c *HTTPClient) Next(ctx context.Context) (bool, error) {
	var response nextResponse
	err := c.doJSON(ctx, http.MethodPost, "/quiz/next", struct{}{}, &response)
	return response.HasNext, err
}

func (c *HTTPClient) Results(ctx context.Context) (quiz.Results, error) {
	var results quiz.Results
	err := c.doJSON(ctx, http.MethodGet, "/quiz/results", nil, &results)
	return results, err
}

func (c *HTTPClient) Abandon(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/quiz/abandon", struct{}{}, nil)
}

func (c *HTTPClient) Overview(ctx context.Context) (progress.UserProgress, error) {
	var record progress.UserProgress
	err := c.doJSON(ctx, http.MethodGet, "/progress", nil, &record)
	return record, err
}

func (c *HTTPClient) Badges(ctx context.Context) ([]progress.BadgeStatus, error) {
	var response badgesResponse
	err := c.doJSON(ctx, http.MethodGet, "/badges", nil, &response)
	return response.Badges, err
}

func (c *HTTPClient) Export(ctx context.Context) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/progress/export", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}
	return io.ReadAll(resp.Body)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, payload, result any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

func decodeAPIError(resp *http.Response) error {
	var payload errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    payload.Error,
	}
}
