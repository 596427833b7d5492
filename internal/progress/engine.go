package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"history-trivia/internal/content"
)

// ErrInvalidImport is returned when imported data fails validation; the
// previously persisted record is left untouched.
var ErrInvalidImport = errors.New("invalid progress import")

// Engine owns experience/level math, point scoring and badge evaluation, and
// is the only component that round-trips the UserProgress record through the
// store. Each exported operation is one load-mutate-save transaction.
type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		now:   time.Now,
	}
}

// LevelUp reports the outcome of an experience grant.
type LevelUp struct {
	LeveledUp           bool `json:"leveled_up"`
	OldLevel            int  `json:"old_level"`
	NewLevel            int  `json:"new_level"`
	Experience          int  `json:"experience"`
	NextLevelExperience int  `json:"next_level_experience"`
}

// SessionSummary carries the aggregated outcome of one completed quiz session
// into the engine.
type SessionSummary struct {
	Difficulty     content.Difficulty
	Score          int
	CorrectAnswers int
	TotalQuestions int
	Accuracy       int
	Categories     map[string]CategoryStat
	FigureIDs      []string
}

// SessionOutcome is what the engine hands back after committing a session.
type SessionOutcome struct {
	LevelUp         LevelUp
	NewBadges       []Badge
	Streak          int
	UnlockedFigures []string
}

// RequiredExperience defines the level-up threshold: 100 * level².
func RequiredExperience(level int) int {
	return 100 * level * level
}

// GainExperience adds amount to the record and cascades level-ups while the
// accumulated experience clears the current threshold.
func GainExperience(p *UserProgress, amount int) LevelUp {
	result := LevelUp{
		OldLevel: p.Level,
		NewLevel: p.Level,
	}

	p.Experience += amount
	for p.Experience >= RequiredExperience(p.Level) {
		p.Experience -= RequiredExperience(p.Level)
		p.Level++
	}

	result.LeveledUp = p.Level > result.OldLevel
	result.NewLevel = p.Level
	result.Experience = p.Experience
	result.NextLevelExperience = RequiredExperience(p.Level)
	return result
}

// CalculatePoints returns the points for one answered question. Incorrect
// answers score zero. Correct answers score a difficulty base plus a single
// consecutive-correct bonus tier: +10 from 3 in a row, +30 from 5 in a row.
func CalculatePoints(difficulty content.Difficulty, correct bool, consecutiveCorrect int) int {
	if !correct {
		return 0
	}

	base := 10
	switch difficulty {
	case content.DifficultyIntermediate:
		base = 20
	case content.DifficultyAdvanced:
		base = 30
	}

	switch {
	case consecutiveCorrect >= 5:
		return base + 30
	case consecutiveCorrect >= 3:
		return base + 10
	}
	return base
}

// UpdateStreak applies the daily streak rule for a session completed at now
// and returns the updated streak. Only the first completed session of a
// calendar day moves the streak.
func UpdateStreak(p *UserProgress, now time.Time) int {
	today := now.Format(dateLayout)
	if p.LastPlayDate == today {
		return p.Streak
	}

	if p.LastPlayDate == "" {
		p.Streak = 1
		p.LastPlayDate = today
		return p.Streak
	}

	last, err := time.Parse(dateLayout, p.LastPlayDate)
	if err != nil {
		// Unparseable stored date: treat as a fresh start rather than failing.
		p.Streak = 1
		p.LastPlayDate = today
		return p.Streak
	}

	todayMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(todayMidnight.Sub(last).Hours() / 24)
	switch {
	case days == 1:
		p.Streak++
	case days > 1:
		p.Streak = 1
	default:
		// Clock moved backwards; leave the record alone.
		return p.Streak
	}

	p.LastPlayDate = today
	return p.Streak
}

// UpdateStatistics folds one session into the cumulative counters and
// recomputes the accuracy rate.
func UpdateStatistics(p *UserProgress, summary SessionSummary) {
	p.Statistics.TotalQuestions += summary.TotalQuestions
	p.Statistics.CorrectAnswers += summary.CorrectAnswers
	p.Statistics.AccuracyRate = Percent(p.Statistics.CorrectAnswers, p.Statistics.TotalQuestions)

	if p.Statistics.Categories == nil {
		p.Statistics.Categories = make(map[string]CategoryStat)
	}
	for category, stat := range summary.Categories {
		current := p.Statistics.Categories[category]
		current.Total += stat.Total
		current.Correct += stat.Correct
		p.Statistics.Categories[category] = current
	}
}

// EnsureProgress loads the persisted record, creating and persisting the
// default one on first use.
func (e *Engine) EnsureProgress(ctx context.Context) (*UserProgress, error) {
	record, err := e.store.Load(ctx)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, ErrNoProgress) {
		log.Printf("progress: load failed, starting fresh: %v", err)
	}

	record = NewUserProgress()
	if err := e.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("persist default progress: %w", err)
	}
	return record, nil
}

// Overview returns the current record for display without persisting anything.
// Load failures fall back to the default record.
func (e *Engine) Overview(ctx context.Context) (*UserProgress, error) {
	return e.loadOrNew(ctx), nil
}

// AddExperience grants experience as one load-mutate-save transaction. When no
// record exists it reports no level-up and changes nothing.
func (e *Engine) AddExperience(ctx context.Context, amount int) (LevelUp, error) {
	record, err := e.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoProgress) {
			log.Printf("progress: load failed, skipping experience grant: %v", err)
		}
		return LevelUp{}, nil
	}

	result := GainExperience(record, amount)
	if err := e.store.Save(ctx, record); err != nil {
		return LevelUp{}, fmt.Errorf("persist experience: %w", err)
	}
	return result, nil
}

// ApplySession commits all effects of a completed session in one transaction:
// experience, cumulative statistics, daily streak, badge awards, figure
// unlocks and the history entry, in that order.
func (e *Engine) ApplySession(ctx context.Context, record SessionRecord, summary SessionSummary) (SessionOutcome, error) {
	current := e.loadOrNew(ctx)

	outcome := SessionOutcome{
		LevelUp: GainExperience(current, summary.Score),
	}
	current.TotalPoints += summary.Score

	UpdateStatistics(current, summary)
	outcome.Streak = UpdateStreak(current, e.now())
	outcome.NewBadges = EvaluateBadges(current, summary)
	outcome.UnlockedFigures = UnlockFigures(current, summary.FigureIDs)
	AppendHistory(current, record)

	if err := e.store.Save(ctx, current); err != nil {
		return SessionOutcome{}, fmt.Errorf("persist session results: %w", err)
	}
	return outcome, nil
}

// CheckBadgeConditions evaluates the badge table against the current record
// and a session summary, persisting any new awards.
func (e *Engine) CheckBadgeConditions(ctx context.Context, summary SessionSummary) ([]Badge, error) {
	record := e.loadOrNew(ctx)

	awarded := EvaluateBadges(record, summary)
	if len(awarded) == 0 {
		return nil, nil
	}
	if err := e.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("persist badges: %w", err)
	}
	return awarded, nil
}

// CheckCategoryMaster awards the category's master badge once every figure of
// that category has been unlocked.
func (e *Engine) CheckCategoryMaster(ctx context.Context, category string, figures []content.Figure) (Badge, bool, error) {
	record := e.loadOrNew(ctx)

	badge, awarded := CategoryMaster(record, category, figures)
	if !awarded {
		return Badge{}, false, nil
	}
	if err := e.store.Save(ctx, record); err != nil {
		return Badge{}, false, fmt.Errorf("persist category master badge: %w", err)
	}
	return badge, true, nil
}

// AllBadges returns the full badge catalog annotated with held status.
func (e *Engine) AllBadges(ctx context.Context) ([]BadgeStatus, error) {
	record := e.loadOrNew(ctx)

	statuses := make([]BadgeStatus, 0, len(badgeCatalog))
	for _, badge := range badgeCatalog {
		statuses = append(statuses, BadgeStatus{
			Badge: badge,
			Held:  record.HasBadge(badge.ID),
		})
	}
	return statuses, nil
}

// Export serializes the current record verbatim.
func (e *Engine) Export(ctx context.Context) ([]byte, error) {
	record := e.loadOrNew(ctx)
	return json.MarshalIndent(record, "", "  ")
}

// Import replaces the persisted record with the supplied serialized one.
// Malformed data is rejected before anything is written.
func (e *Engine) Import(ctx context.Context, data []byte) error {
	var record UserProgress
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if record.Statistics.Categories == nil {
		record.Statistics.Categories = make(map[string]CategoryStat)
	}

	if err := e.store.Save(ctx, &record); err != nil {
		return fmt.Errorf("persist imported progress: %w", err)
	}
	return nil
}

// loadOrNew recovers from missing or corrupt persistence by falling back to
// the default record; session logic never sees a hard load failure.
func (e *Engine) loadOrNew(ctx context.Context) *UserProgress {
	record, err := e.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoProgress) {
			log.Printf("progress: load failed, starting fresh: %v", err)
		}
		return NewUserProgress()
	}
	if record.Statistics.Categories == nil {
		record.Statistics.Categories = make(map[string]CategoryStat)
	}
	return record
}
