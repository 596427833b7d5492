package quiz

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"history-trivia/internal/content"
	"history-trivia/internal/progress"

	"github.com/google/uuid"
)

const questionsPerSession = 10

var (
	ErrNoQuestions     = errors.New("no questions match the requested difficulty")
	ErrNoActiveSession = errors.New("no quiz session in progress")
	ErrSessionNotDone  = errors.New("session still has unanswered questions")
)

type State int

const (
	StateIdle State = iota
	StateInProgress
	StateCompleted
)

type WrongAnswer struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
	UserAnswer    string `json:"user_answer"`
}

// AnswerFeedback is returned once per question; a second CheckAnswer call for
// the same question yields nil.
type AnswerFeedback struct {
	Correct      bool   `json:"correct"`
	CorrectIndex int    `json:"correct_index"`
	Explanation  string `json:"explanation"`
	Points       int    `json:"points"`
}

// Results aggregates a completed session together with the progression
// effects it committed.
type Results struct {
	Score           int              `json:"score"`
	CorrectAnswers  int              `json:"correct_answers"`
	TotalQuestions  int              `json:"total_questions"`
	Accuracy        int              `json:"accuracy"`
	WrongAnswers    []WrongAnswer    `json:"wrong_answers"`
	LevelUp         progress.LevelUp `json:"level_up"`
	NewBadges       []progress.Badge `json:"new_badges"`
	Streak          int              `json:"streak"`
	UnlockedFigures []string         `json:"unlocked_figures"`
}

// Manager owns the lifecycle of a single quiz attempt. It holds no durable
// state of its own: all persistent effects go through the progression engine
// when results are retrieved, so an abandoned session leaves no trace.
type Manager struct {
	engine  *progress.Engine
	catalog *content.Catalog

	rng *rand.Rand
	now func() time.Time

	state       State
	difficulty  content.Difficulty
	questions   []content.Question
	index       int
	score       int
	correct     int
	consecutive int
	answered    bool
	wrong       []WrongAnswer
	categories  map[string]progress.CategoryStat
}

func NewManager(engine *progress.Engine, catalog *content.Catalog) *Manager {
	return &Manager{
		engine:  engine,
		catalog: catalog,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
}

func (m *Manager) State() State {
	return m.state
}

func (m *Manager) Difficulty() content.Difficulty {
	return m.difficulty
}

func (m *Manager) TotalQuestions() int {
	return len(m.questions)
}

// QuestionNumber is the 1-based position of the cursor, for display.
func (m *Manager) QuestionNumber() int {
	return m.index + 1
}

// Start begins a new session at the given difficulty. The matching pool is
// shuffled and up to ten questions are drawn. With zero matching questions it
// fails and the previous session state, if any, is untouched.
func (m *Manager) Start(difficulty content.Difficulty) error {
	pool := m.catalog.QuestionsByDifficulty(difficulty)
	if len(pool) == 0 {
		return ErrNoQuestions
	}

	selected := make([]content.Question, len(pool))
	copy(selected, pool)
	m.rng.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	if len(selected) > questionsPerSession {
		selected = selected[:questionsPerSession]
	}

	m.state = StateInProgress
	m.difficulty = difficulty
	m.questions = selected
	m.index = 0
	m.score = 0
	m.correct = 0
	m.consecutive = 0
	m.answered = false
	m.wrong = nil
	m.categories = make(map[string]progress.CategoryStat)
	return nil
}

// CurrentQuestion returns the question under the cursor.
func (m *Manager) CurrentQuestion() (content.Question, bool) {
	if m.state != StateInProgress || m.index >= len(m.questions) {
		return content.Question{}, false
	}
	return m.questions[m.index], true
}

// Progress reports how far the cursor is through the session as a rounded
// percentage, for display only.
func (m *Manager) Progress() int {
	return progress.Percent(m.index+1, len(m.questions))
}

// CheckAnswer scores the current question exactly once. It returns nil when
// the question was already answered. Points are computed a single time, with
// the consecutive-correct count as it stands after this answer, and that same
// value is both added to the score and reported back.
func (m *Manager) CheckAnswer(selectedIndex int) (*AnswerFeedback, error) {
	question, ok := m.CurrentQuestion()
	if !ok {
		return nil, ErrNoActiveSession
	}
	if m.answered {
		return nil, nil
	}
	m.answered = true

	correct := selectedIndex == question.CorrectIndex
	points := 0
	if correct {
		m.correct++
		m.consecutive++
		points = progress.CalculatePoints(m.difficulty, true, m.consecutive)
		m.score += points
	} else {
		m.consecutive = 0
		m.wrong = append(m.wrong, WrongAnswer{
			Question:      question.Prompt,
			CorrectAnswer: question.Options[question.CorrectIndex],
			UserAnswer:    optionText(question.Options, selectedIndex),
		})
	}

	stat := m.categories[question.Category]
	stat.Total++
	if correct {
		stat.Correct++
	}
	m.categories[question.Category] = stat

	return &AnswerFeedback{
		Correct:      correct,
		CorrectIndex: question.CorrectIndex,
		Explanation:  question.Explanation,
		Points:       points,
	}, nil
}

// Next clears the answered guard and advances the cursor. It reports whether
// a further question exists; once it returns false the caller retrieves
// results to complete the session.
func (m *Manager) Next() bool {
	if m.state != StateInProgress {
		return false
	}
	m.answered = false
	m.index++
	return m.index < len(m.questions)
}

// Results commits the session through the progression engine and returns the
// composite summary. It is only valid once the cursor has exhausted every
// question. On success the session transitions to Completed.
func (m *Manager) Results(ctx context.Context) (*Results, error) {
	if m.state != StateInProgress {
		return nil, ErrNoActiveSession
	}
	if m.index < len(m.questions) {
		return nil, ErrSessionNotDone
	}

	total := len(m.questions)
	accuracy := progress.Percent(m.correct, total)
	summary := progress.SessionSummary{
		Difficulty:     m.difficulty,
		Score:          m.score,
		CorrectAnswers: m.correct,
		TotalQuestions: total,
		Accuracy:       accuracy,
		Categories:     m.categories,
		FigureIDs:      m.figureIDs(),
	}
	record := progress.SessionRecord{
		ID:             uuid.NewString(),
		Difficulty:     m.difficulty,
		Score:          m.score,
		CorrectAnswers: m.correct,
		TotalQuestions: total,
		Accuracy:       accuracy,
		CompletedAt:    m.now().UTC(),
	}

	outcome, err := m.engine.ApplySession(ctx, record, summary)
	if err != nil {
		return nil, err
	}

	newBadges := outcome.NewBadges
	for _, category := range sessionCategories(m.questions) {
		badge, awarded, err := m.engine.CheckCategoryMaster(ctx, category, m.catalog.Figures())
		if err != nil {
			return nil, err
		}
		if awarded {
			newBadges = append(newBadges, badge)
		}
	}

	m.state = StateCompleted
	return &Results{
		Score:           m.score,
		CorrectAnswers:  m.correct,
		TotalQuestions:  total,
		Accuracy:        accuracy,
		WrongAnswers:    m.wrong,
		LevelUp:         outcome.LevelUp,
		NewBadges:       newBadges,
		Streak:          outcome.Streak,
		UnlockedFigures: outcome.UnlockedFigures,
	}, nil
}

// Abandon drops the session without committing anything: no scoring, no
// statistics, no streak change.
func (m *Manager) Abandon() {
	m.state = StateIdle
	m.questions = nil
	m.index = 0
	m.score = 0
	m.correct = 0
	m.consecutive = 0
	m.answered = false
	m.wrong = nil
	m.categories = nil
}

// figureIDs lists the distinct figures referenced by the session's questions,
// in question order.
func (m *Manager) figureIDs() []string {
	seen := make(map[string]bool, len(m.questions))
	var ids []string
	for _, question := range m.questions {
		if question.FigureID == "" || seen[question.FigureID] {
			continue
		}
		seen[question.FigureID] = true
		ids = append(ids, question.FigureID)
	}
	return ids
}

func sessionCategories(questions []content.Question) []string {
	seen := make(map[string]bool, len(questions))
	var categories []string
	for _, question := range questions {
		if seen[question.Category] {
			continue
		}
		seen[question.Category] = true
		categories = append(categories, question.Category)
	}
	return categories
}

func optionText(options []string, index int) string {
	if index < 0 || index >= len(options) {
		return ""
	}
	return options[index]
}
