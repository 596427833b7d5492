package progress

import "history-trivia/internal/content"

type ConditionKind int

const (
	// ConditionFirstQuiz is met by completing any quiz.
	ConditionFirstQuiz ConditionKind = iota
	// ConditionPerfectSession is met when every question of a session was correct.
	ConditionPerfectSession
	// ConditionTotalCorrect is met once cumulative correct answers reach Threshold.
	ConditionTotalCorrect
	// ConditionStreak is met once the daily streak reaches Threshold.
	ConditionStreak
	// ConditionCategoryMaster is met once every figure of Category is unlocked.
	// It needs the figure catalog, so it is checked by CategoryMaster rather
	// than by the per-session dispatch.
	ConditionCategoryMaster
)

type Condition struct {
	Kind      ConditionKind
	Threshold int
	Category  string
}

// Badge is a permanent achievement marker; once held it is never revoked.
type Badge struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`

	Condition Condition `json:"-"`
}

type BadgeStatus struct {
	Badge
	Held bool `json:"held"`
}

// badgeCatalog is fixed configuration; evaluation order matters for the order
// in which new awards are reported.
var badgeCatalog = []Badge{
	{ID: "beginner", Name: "First Steps", Icon: "🎓", Condition: Condition{Kind: ConditionFirstQuiz}},
	{ID: "perfectionist", Name: "Perfectionist", Icon: "💯", Condition: Condition{Kind: ConditionPerfectSession}},
	{ID: "learner", Name: "Eager Learner", Icon: "📚", Condition: Condition{Kind: ConditionTotalCorrect, Threshold: 50}},
	{ID: "scholar", Name: "Scholar", Icon: "🏛️", Condition: Condition{Kind: ConditionTotalCorrect, Threshold: 200}},
	{ID: "streak_7", Name: "Week Streak", Icon: "🔥", Condition: Condition{Kind: ConditionStreak, Threshold: 7}},
	{ID: "streak_30", Name: "Month Streak", Icon: "🌟", Condition: Condition{Kind: ConditionStreak, Threshold: 30}},
	{ID: "scientist_master", Name: "Master of Scientists", Icon: "🔬", Condition: Condition{Kind: ConditionCategoryMaster, Category: "scientist"}},
	{ID: "artist_master", Name: "Master of Artists", Icon: "🎨", Condition: Condition{Kind: ConditionCategoryMaster, Category: "artist"}},
	{ID: "politician_master", Name: "Master of Politicians", Icon: "🗳️", Condition: Condition{Kind: ConditionCategoryMaster, Category: "politician"}},
	{ID: "inventor_master", Name: "Master of Inventors", Icon: "💡", Condition: Condition{Kind: ConditionCategoryMaster, Category: "inventor"}},
	{ID: "philosopher_master", Name: "Master of Philosophers", Icon: "🦉", Condition: Condition{Kind: ConditionCategoryMaster, Category: "philosopher"}},
}

// BadgeCatalog returns the full static badge table.
func BadgeCatalog() []Badge {
	catalog := make([]Badge, len(badgeCatalog))
	copy(catalog, badgeCatalog)
	return catalog
}

func badgeByID(id string) (Badge, bool) {
	for _, badge := range badgeCatalog {
		if badge.ID == id {
			return badge, true
		}
	}
	return Badge{}, false
}

// EvaluateBadges runs the per-session conditions in catalog order, appends any
// newly met badges to the record and returns them. Badges already held are
// skipped, so repeated evaluation never double-awards.
func EvaluateBadges(p *UserProgress, summary SessionSummary) []Badge {
	var awarded []Badge
	for _, badge := range badgeCatalog {
		if badge.Condition.Kind == ConditionCategoryMaster {
			continue
		}
		if p.HasBadge(badge.ID) {
			continue
		}
		if !conditionMet(badge.Condition, p, summary) {
			continue
		}
		p.Badges = append(p.Badges, badge.ID)
		awarded = append(awarded, badge)
	}
	return awarded
}

func conditionMet(condition Condition, p *UserProgress, summary SessionSummary) bool {
	switch condition.Kind {
	case ConditionFirstQuiz:
		return true
	case ConditionPerfectSession:
		return summary.TotalQuestions > 0 && summary.CorrectAnswers == summary.TotalQuestions
	case ConditionTotalCorrect:
		return p.Statistics.CorrectAnswers >= condition.Threshold
	case ConditionStreak:
		return p.Streak >= condition.Threshold
	}
	return false
}

// CategoryMaster awards the category's master badge the first time every
// figure of that category is unlocked. Categories with no figures never award.
func CategoryMaster(p *UserProgress, category string, figures []content.Figure) (Badge, bool) {
	badge, ok := badgeByID(category + "_master")
	if !ok || p.HasBadge(badge.ID) {
		return Badge{}, false
	}

	total := 0
	for _, figure := range figures {
		if figure.Category != category {
			continue
		}
		total++
		if !p.HasFigure(figure.ID) {
			return Badge{}, false
		}
	}
	if total == 0 {
		return Badge{}, false
	}

	p.Badges = append(p.Badges, badge.ID)
	return badge, true
}
