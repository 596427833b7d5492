package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
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

func newTestDeps(t *testing.T) (*quiz.Manager, *progress.Engine, *fakeStore) {
	t.Helper()

	questions := make([]content.Question, 0, 3)
	for i := 0; i < 3; i++ {
		questions = append(questions, content.Question{
			ID:           fmt.Sprintf("q%d", i),
			Category:     "inventor",
			Difficulty:   content.DifficultyBeginner,
			Prompt:       fmt.Sprintf("question %d", i),
			Options:      []string{"right", "wrong"},
			CorrectIndex: 0,
			Explanation:  "because history",
			FigureID:     "tesla",
		})
	}
	figures := []content.Figure{{ID: "tesla", Name: "Nikola Tesla", Category: "inventor"}}

	catalog, err := content.NewCatalog(questions, figures)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	store := &fakeStore{record: progress.NewUserProgress()}
	engine := progress.NewEngine(store)
	return quiz.NewManager(engine, catalog), engine, store
}

func TestRunFullSession(t *testing.T) {
	manager, engine, store := newTestDeps(t)

	input := "beginner\nA\nA\nB\n"
	var out bytes.Buffer

	err := Run(context.Background(), strings.NewReader(input), &out, manager, engine)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	text := out.String()
	if strings.Count(text, "Correct!") != 2 {
		t.Fatalf("expected two correct answers, got: %s", text)
	}
	if !strings.Contains(text, "Wrong. Correct answer was right") {
		t.Fatalf("missing wrong-answer feedback: %s", text)
	}
	if !strings.Contains(text, "because history") {
		t.Fatalf("missing explanation: %s", text)
	}
	if !strings.Contains(text, "2/3 correct (67%)") {
		t.Fatalf("missing final score: %s", text)
	}
	if !strings.Contains(text, "Review:") {
		t.Fatalf("missing wrong-answer review: %s", text)
	}
	if !strings.Contains(text, "Figure unlocked: tesla") {
		t.Fatalf("missing figure unlock notice: %s", text)
	}

	if store.record.Statistics.TotalQuestions != 3 || store.record.Statistics.CorrectAnswers != 2 {
		t.Fatalf("persisted statistics = %+v", store.record.Statistics)
	}
	if store.record.Streak != 1 {
		t.Fatalf("streak = %d, want 1", store.record.Streak)
	}
}

func TestRunInvalidDifficultyExits(t *testing.T) {
	manager, engine, _ := newTestDeps(t)

	input := "expert\nimpossible\nnope\n"
	var out bytes.Buffer

	err := Run(context.Background(), strings.NewReader(input), &out, manager, engine)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "No difficulty chosen, exiting.") {
		t.Fatalf("missing exit message: %s", out.String())
	}
}

func TestGetAnswerValidation(t *testing.T) {
	var out bytes.Buffer

	index, ok := getAnswer(bufio.NewReader(strings.NewReader(" a \n")), &out, 2)
	if !ok || index != 0 {
		t.Fatalf("getAnswer = (%d, %t), want (0, true)", index, ok)
	}

	_, ok = getAnswer(bufio.NewReader(strings.NewReader("x\n1\nZ\n")), &out, 2)
	if ok {
		t.Fatal("expected getAnswer to give up after three invalid inputs")
	}
}
