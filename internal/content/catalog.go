package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrEmptyCatalog      = errors.New("question catalog is empty")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func ParseDifficulty(value string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(value))) {
	case DifficultyBeginner:
		return DifficultyBeginner, nil
	case DifficultyIntermediate:
		return DifficultyIntermediate, nil
	case DifficultyAdvanced:
		return DifficultyAdvanced, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, value)
}

// Question is loaded once at startup and shared read-only across sessions.
type Question struct {
	ID           string     `json:"id"`
	Category     string     `json:"category"`
	Difficulty   Difficulty `json:"difficulty"`
	Prompt       string     `json:"prompt"`
	Options      []string   `json:"options"`
	CorrectIndex int        `json:"correct_index"`
	Explanation  string     `json:"explanation"`
	FigureID     string     `json:"figure_id"`
}

// Figure is a historical-person entry unlocked by answering questions linked to it.
type Figure struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Era      string `json:"era"`
	Summary  string `json:"summary"`
}

type Catalog struct {
	questions  []Question
	figures    []Figure
	figureByID map[string]Figure
}

// Load reads both catalog files and validates them together. Any validation
// failure is fatal to quiz play, so partial catalogs are rejected outright.
func Load(questionsPath, figuresPath string) (*Catalog, error) {
	questionsData, err := os.ReadFile(questionsPath)
	if err != nil {
		return nil, fmt.Errorf("read questions catalog: %w", err)
	}
	var questions []Question
	if err := json.Unmarshal(questionsData, &questions); err != nil {
		return nil, fmt.Errorf("parse questions catalog: %w", err)
	}

	figuresData, err := os.ReadFile(figuresPath)
	if err != nil {
		return nil, fmt.Errorf("read figures catalog: %w", err)
	}
	var figures []Figure
	if err := json.Unmarshal(figuresData, &figures); err != nil {
		return nil, fmt.Errorf("parse figures catalog: %w", err)
	}

	return NewCatalog(questions, figures)
}

func NewCatalog(questions []Question, figures []Figure) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyCatalog
	}

	figureByID := make(map[string]Figure, len(figures))
	for _, figure := range figures {
		if figure.ID == "" {
			return nil, errors.New("figure with empty id")
		}
		if _, exists := figureByID[figure.ID]; exists {
			return nil, fmt.Errorf("duplicate figure id %q", figure.ID)
		}
		figureByID[figure.ID] = figure
	}

	for _, question := range questions {
		if question.ID == "" {
			return nil, errors.New("question with empty id")
		}
		if len(question.Options) < 2 {
			return nil, fmt.Errorf("question %q needs at least two options", question.ID)
		}
		if question.CorrectIndex < 0 || question.CorrectIndex >= len(question.Options) {
			return nil, fmt.Errorf("question %q correct_index %d out of range", question.ID, question.CorrectIndex)
		}
		if _, err := ParseDifficulty(string(question.Difficulty)); err != nil {
			return nil, fmt.Errorf("question %q: %w", question.ID, err)
		}
		if question.FigureID != "" {
			if _, ok := figureByID[question.FigureID]; !ok {
				return nil, fmt.Errorf("question %q references unknown figure %q", question.ID, question.FigureID)
			}
		}
	}

	return &Catalog{
		questions:  questions,
		figures:    figures,
		figureByID: figureByID,
	}, nil
}

func (c *Catalog) Questions() []Question {
	return c.questions
}

func (c *Catalog) QuestionsByDifficulty(difficulty Difficulty) []Question {
	matched := make([]Question, 0, len(c.questions))
	for _, question := range c.questions {
		if question.Difficulty == difficulty {
			matched = append(matched, question)
		}
	}
	return matched
}

func (c *Catalog) Figures() []Figure {
	return c.figures
}

func (c *Catalog) FigureByID(id string) (Figure, bool) {
	figure, ok := c.figureByID[id]
	return figure, ok
}

func (c *Catalog) FiguresByCategory(category string) []Figure {
	matched := make([]Figure, 0, len(c.figures))
	for _, figure := range c.figures {
		if figure.Category == category {
			matched = append(matched, figure)
		}
	}
	return matched
}

// Categories returns the distinct figure categories in catalog order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool, len(c.figures))
	categories := make([]string, 0, len(c.figures))
	for _, figure := range c.figures {
		if seen[figure.Category] {
			continue
		}
		seen[figure.Category] = true
		categories = append(categories, figure.Category)
	}
	return categories
}
