package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"history-trivia/internal/content"
)

// ErrNoProgress is returned by Store.Load when no record has been persisted yet.
var ErrNoProgress = errors.New("no progress record")

const (
	dateLayout        = "2006-01-02"
	maxHistoryEntries = 50
)

// Store persists the single durable UserProgress record. Every logical
// operation reads the full record, mutates it in memory and writes it back
// once; nothing is cached between operations.
type Store interface {
	Load(ctx context.Context) (*UserProgress, error)
	Save(ctx context.Context, record *UserProgress) error
}

type UserProgress struct {
	Level           int             `json:"level"`
	Experience      int             `json:"experience"`
	TotalPoints     int             `json:"total_points"`
	Streak          int             `json:"streak"`
	LastPlayDate    string          `json:"last_play_date,omitempty"`
	UnlockedFigures []string        `json:"unlocked_figures"`
	Badges          []string        `json:"badges"`
	Statistics      Statistics      `json:"statistics"`
	QuizHistory     []SessionRecord `json:"quiz_history"`
}

type Statistics struct {
	TotalQuestions int                     `json:"total_questions"`
	CorrectAnswers int                     `json:"correct_answers"`
	AccuracyRate   int                     `json:"accuracy_rate"`
	Categories     map[string]CategoryStat `json:"categories"`
}

type CategoryStat struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// SessionRecord is one entry of the bounded quiz history.
type SessionRecord struct {
	ID             string             `json:"id"`
	Difficulty     content.Difficulty `json:"difficulty"`
	Score          int                `json:"score"`
	CorrectAnswers int                `json:"correct_answers"`
	TotalQuestions int                `json:"total_questions"`
	Accuracy       int                `json:"accuracy"`
	CompletedAt    time.Time          `json:"completed_at"`
}

// NewUserProgress returns the default record persisted on first use.
func NewUserProgress() *UserProgress {
	return &UserProgress{
		Level:           1,
		UnlockedFigures: []string{},
		Badges:          []string{},
		Statistics: Statistics{
			Categories: make(map[string]CategoryStat),
		},
		QuizHistory: []SessionRecord{},
	}
}

func (p *UserProgress) HasBadge(badgeID string) bool {
	for _, held := range p.Badges {
		if held == badgeID {
			return true
		}
	}
	return false
}

func (p *UserProgress) HasFigure(figureID string) bool {
	for _, unlocked := range p.UnlockedFigures {
		if unlocked == figureID {
			return true
		}
	}
	return false
}

// UnlockFigures adds every figure id not already held, preserving insertion
// order, and returns the ids that were newly unlocked.
func UnlockFigures(p *UserProgress, figureIDs []string) []string {
	var unlocked []string
	for _, id := range figureIDs {
		if id == "" || p.HasFigure(id) {
			continue
		}
		p.UnlockedFigures = append(p.UnlockedFigures, id)
		unlocked = append(unlocked, id)
	}
	return unlocked
}

// AppendHistory records a completed session, dropping the oldest entries once
// the history exceeds its bound.
func AppendHistory(p *UserProgress, record SessionRecord) {
	p.QuizHistory = append(p.QuizHistory, record)
	if excess := len(p.QuizHistory) - maxHistoryEntries; excess > 0 {
		p.QuizHistory = p.QuizHistory[excess:]
	}
}

// Validate checks structural integrity; imports are rejected when it fails so
// the prior record stays intact.
func (p *UserProgress) Validate() error {
	if p.Level < 1 {
		return fmt.Errorf("level %d below 1", p.Level)
	}
	if p.Experience < 0 || p.Experience >= RequiredExperience(p.Level) {
		return fmt.Errorf("experience %d outside [0, %d)", p.Experience, RequiredExperience(p.Level))
	}
	if p.TotalPoints < 0 {
		return errors.New("negative total points")
	}
	if p.Streak < 0 {
		return errors.New("negative streak")
	}
	if p.LastPlayDate != "" {
		if _, err := time.Parse(dateLayout, p.LastPlayDate); err != nil {
			return fmt.Errorf("last play date %q: %w", p.LastPlayDate, err)
		}
	}
	if p.Statistics.TotalQuestions < 0 || p.Statistics.CorrectAnswers < 0 {
		return errors.New("negative statistics counters")
	}
	if p.Statistics.CorrectAnswers > p.Statistics.TotalQuestions {
		return errors.New("correct answers exceed total questions")
	}
	if len(p.QuizHistory) > maxHistoryEntries {
		return fmt.Errorf("quiz history holds %d entries, bound is %d", len(p.QuizHistory), maxHistoryEntries)
	}
	return nil
}

// Percent returns part/total as an integer percentage, rounded half up.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (part*100 + total/2) / total
}
