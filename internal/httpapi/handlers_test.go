package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"history-trivia/internal/content"
	"history-trivia/internal/progress"
	"history-trivia/internal/quiz"
)

type fakeStore struct {
	record *progress.UserProgress
}

func (f *fakeStore) Load(_ context.Context) (*progress.UserProgress, error) {
	if f.record == nil {
		return nil, progress.ErrNoProgress
	}
	data, err := json.Marshal(f.record)
	if err != nil {
		return nil, err
	}
	var record progress.UserProgress
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (f *fakeStore) Save(_ context.Context, record *progress.UserProgress) error {
	f.record = record
	return nil
}

func testRouter(t *testing.T) (http.Handler, *fakeStore) {
	t.Helper()

	questions := make([]content.Question, 0, 3)
	for i := 0; i < 3; i++ {
		questions = append(questions, content.Question{
			ID:           fmt.Sprintf("q%d", i),
			Category:     "scientist",
			Difficulty:   content.DifficultyBeginner,
			Prompt:       fmt.Sprintf("question %d", i),
			Options:      []string{"right", "wrong"},
			CorrectIndex: 0,
			Explanation:  "because",
			FigureID:     "curie",
		})
	}
	figures := []content.Figure{{ID: "curie", Name: "Marie Curie", Category: "scientist"}}

	catalog, err := content.NewCatalog(questions, figures)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	store := &fakeStore{record: progress.NewUserProgress()}
	engine := progress.NewEngine(store)
	manager := quiz.NewManager(engine, catalog)
	return NewRouter(manager, engine, catalog), store
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	request := httptest.NewRequest(method, path, reader)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(recorder.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestStartRejectsBadDifficulty(t *testing.T) {
	router, _ := testRouter(t)

	recorder := doRequest(t, router, http.MethodPost, "/quiz/start", `{"difficulty":"expert"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestStartNoMatchingQuestions(t *testing.T) {
	router, _ := testRouter(t)

	recorder := doRequest(t, router, http.MethodPost, "/quiz/start", `{"difficulty":"advanced"}`)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
}

func TestQuestionWithoutSession(t *testing.T) {
	router, _ := testRouter(t)

	recorder := doRequest(t, router, http.MethodGet, "/quiz/question", "")
	if recorder.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", recorder.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router, _ := testRouter(t)

	recorder := doRequest(t, router, http.MethodGet, "/quiz/start", "")
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", recorder.Code)
	}
	if allow := recorder.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("Allow header = %q, want POST", allow)
	}
}

func TestFullSessionFlow(t *testing.T) {
	router, store := testRouter(t)

	recorder := doRequest(t, router, http.MethodPost, "/quiz/start", `{"difficulty":"beginner"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("start status = %d: %s", recorder.Code, recorder.Body.String())
	}
	var started startResponse
	decodeBody(t, recorder, &started)
	if started.QuestionCount != 3 {
		t.Fatalf("question count = %d, want 3", started.QuestionCount)
	}

	for i := 0; i < started.QuestionCount; i++ {
		recorder = doRequest(t, router, http.MethodGet, "/quiz/question", "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("question status = %d", recorder.Code)
		}
		var question questionResponse
		decodeBody(t, recorder, &question)
		if question.QuestionNumber != i+1 {
			t.Fatalf("question number = %d, want %d", question.QuestionNumber, i+1)
		}
		if len(question.Options) != 2 {
			t.Fatalf("options = %v", question.Options)
		}

		recorder = doRequest(t, router, http.MethodPost, "/quiz/answer", `{"option_index":0}`)
		if recorder.Code != http.StatusOK {
			t.Fatalf("answer status = %d", recorder.Code)
		}
		var feedback quiz.AnswerFeedback
		decodeBody(t, recorder, &feedback)
		if !feedback.Correct {
			t.Fatalf("answer %d judged incorrect", i)
		}

		// A repeated answer for the same question is rejected.
		recorder = doRequest(t, router, http.MethodPost, "/quiz/answer", `{"option_index":0}`)
		if recorder.Code != http.StatusConflict {
			t.Fatalf("double answer status = %d, want 409", recorder.Code)
		}

		recorder = doRequest(t, router, http.MethodPost, "/quiz/next", "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("next status = %d", recorder.Code)
		}
		var next nextResponse
		decodeBody(t, recorder, &next)
		if wantNext := i < started.QuestionCount-1; next.HasNext != wantNext {
			t.Fatalf("has_next = %v at question %d, want %v", next.HasNext, i+1, wantNext)
		}
	}

	recorder = doRequest(t, router, http.MethodGet, "/quiz/results", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("results status = %d: %s", recorder.Code, recorder.Body.String())
	}
	var results quiz.Results
	decodeBody(t, recorder, &results)
	if results.CorrectAnswers != 3 || results.Accuracy != 100 {
		t.Fatalf("results = %+v", results)
	}

	if store.record.Statistics.TotalQuestions != 3 {
		t.Fatalf("persisted statistics = %+v", store.record.Statistics)
	}

	// Figures should now be reported as unlocked.
	recorder = doRequest(t, router, http.MethodGet, "/figures", "")
	var figures figuresResponse
	decodeBody(t, recorder, &figures)
	if len(figures.Figures) != 1 || !figures.Figures[0].Unlocked {
		t.Fatalf("figures = %+v", figures)
	}

	// Badge catalog reports held status.
	recorder = doRequest(t, router, http.MethodGet, "/badges", "")
	var badges badgesResponse
	decodeBody(t, recorder, &badges)
	if len(badges.Badges) != 11 {
		t.Fatalf("badge catalog size = %d, want 11", len(badges.Badges))
	}
	heldBeginner := false
	for _, badge := range badges.Badges {
		if badge.ID == "beginner" && badge.Held {
			heldBeginner = true
		}
	}
	if !heldBeginner {
		t.Fatalf("beginner badge not held after a completed session")
	}
}

func TestAnswerRequiresOptionIndex(t *testing.T) {
	router, _ := testRouter(t)

	doRequest(t, router, http.MethodPost, "/quiz/start", `{"difficulty":"beginner"}`)
	recorder := doRequest(t, router, http.MethodPost, "/quiz/answer", `{}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestAbandon(t *testing.T) {
	router, store := testRouter(t)

	doRequest(t, router, http.MethodPost, "/quiz/start", `{"difficulty":"beginner"}`)
	recorder := doRequest(t, router, http.MethodPost, "/quiz/abandon", "")
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", recorder.Code)
	}
	if store.record.Statistics.TotalQuestions != 0 {
		t.Fatalf("abandon mutated the record: %+v", store.record)
	}

	recorder = doRequest(t, router, http.MethodGet, "/quiz/results", "")
	if recorder.Code != http.StatusConflict {
		t.Fatalf("results after abandon = %d, want 409", recorder.Code)
	}
}

func TestExportImport(t *testing.T) {
	router, store := testRouter(t)
	store.record.TotalPoints = 777

	recorder := doRequest(t, router, http.MethodGet, "/progress/export", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("export status = %d", recorder.Code)
	}
	exported := recorder.Body.String()
	if !strings.Contains(exported, "777") {
		t.Fatalf("export missing data: %s", exported)
	}

	store.record = progress.NewUserProgress()
	recorder = doRequest(t, router, http.MethodPost, "/progress/import", exported)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("import status = %d: %s", recorder.Code, recorder.Body.String())
	}
	if store.record.TotalPoints != 777 {
		t.Fatalf("imported record = %+v", store.record)
	}

	recorder = doRequest(t, router, http.MethodPost, "/progress/import", `{"level":0}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("malformed import status = %d, want 400", recorder.Code)
	}
	if store.record.TotalPoints != 777 {
		t.Fatalf("malformed import modified the record: %+v", store.record)
	}
}

func TestOverview(t *testing.T) {
	router, store := testRouter(t)
	store.record.Level = 6

	recorder := doRequest(t, router, http.MethodGet, "/progress", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var record progress.UserProgress
	decodeBody(t, recorder, &record)
	if record.Level != 6 {
		t.Fatalf("overview level = %d, want 6", record.Level)
	}
}
