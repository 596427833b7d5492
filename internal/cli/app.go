package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"history-trivia/internal/content"
	"history-trivia/internal/progress"
	"history-trivia/internal/quiz"
)

const maxAttempts = 3

// Run plays one interactive quiz session on the terminal and commits its
// results through the progression engine.
func Run(ctx context.Context, in io.Reader, out io.Writer, manager *quiz.Manager, engine *progress.Engine) error {
	reader := bufio.NewReader(in)

	record, err := engine.Overview(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "history-trivia — level %d, %d points, %d day streak\n", record.Level, record.TotalPoints, record.Streak)

	difficulty, ok := getDifficulty(reader, out)
	if !ok {
		fmt.Fprintln(out, "No difficulty chosen, exiting.")
		return nil
	}

	if err := manager.Start(difficulty); err != nil {
		return err
	}

	for {
		question, ok := manager.CurrentQuestion()
		if !ok {
			break
		}
		printQuestion(out, manager.QuestionNumber(), manager.TotalQuestions(), question)

		chosenIndex, ok := getAnswer(reader, out, len(question.Options))
		if !ok {
			// A skipped question still counts as a wrong answer so the
			// session runs to completion.
			chosenIndex = -1
			fmt.Fprintln(out, "Skipping.")
		}

		feedback, err := manager.CheckAnswer(chosenIndex)
		if err != nil {
			return err
		}
		if feedback == nil {
			if !manager.Next() {
				break
			}
			continue
		}

		fmt.Fprintln(out)
		if feedback.Correct {
			fmt.Fprintf(out, "Correct! +%d points\n", feedback.Points)
		} else {
			fmt.Fprintf(out, "Wrong. Correct answer was %s\n", optionText(question.Options, feedback.CorrectIndex))
		}
		if feedback.Explanation != "" {
			fmt.Fprintf(out, "%s\n", feedback.Explanation)
		}
		fmt.Fprintln(out)

		if !manager.Next() {
			break
		}
	}

	results, err := manager.Results(ctx)
	if err != nil {
		return err
	}

	printResults(out, results)
	return nil
}

func getDifficulty(reader *bufio.Reader, out io.Writer) (content.Difficulty, bool) {
	fmt.Fprintln(out, "\nChoose a difficulty: beginner, intermediate or advanced")

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", false
		}

		difficulty, err := content.ParseDifficulty(line)
		if err == nil {
			return difficulty, true
		}
		if attempt < maxAttempts {
			fmt.Fprintln(out, "Invalid difficulty, try again.")
		}
	}

	return "", false
}

func printQuestion(out io.Writer, number, total int, question content.Question) {
	fmt.Fprintf(out, "\nQ%d/%d [%s]: %s\n\n", number, total, question.Category, question.Prompt)
	for idx, option := range question.Options {
		fmt.Fprintf(out, "%c. %s\n", 'A'+idx, option)
	}
	fmt.Fprintln(out)
}

func getAnswer(reader *bufio.Reader, out io.Writer, optionCount int) (int, bool) {
	if optionCount < 1 {
		return -1, false
	}

	maxLetter := byte('A' + optionCount - 1)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		userAnswer, err := reader.ReadString('\n')
		if err != nil {
			return -1, false
		}

		userAnswer = strings.ToUpper(strings.TrimSpace(userAnswer))
		if len(userAnswer) == 1 {
			letter := userAnswer[0]
			if letter >= 'A' && letter <= maxLetter {
				return int(letter - 'A'), true
			}
		}

		if attempt < maxAttempts {
			fmt.Fprintf(out, "Invalid input. Please enter a letter A-%c.\n", maxLetter)
		}
	}

	return -1, false
}

func printResults(out io.Writer, results *quiz.Results) {
	fmt.Fprintf(out, "\nFinal score: %d points, %d/%d correct (%d%%)\n",
		results.Score, results.CorrectAnswers, results.TotalQuestions, results.Accuracy)
	fmt.Fprintf(out, "Daily streak: %d\n", results.Streak)

	if results.LevelUp.LeveledUp {
		fmt.Fprintf(out, "Level up! %d -> %d\n", results.LevelUp.OldLevel, results.LevelUp.NewLevel)
	}
	for _, badge := range results.NewBadges {
		fmt.Fprintf(out, "New badge: %s %s\n", badge.Icon, badge.Name)
	}
	for _, figureID := range results.UnlockedFigures {
		fmt.Fprintf(out, "Figure unlocked: %s\n", figureID)
	}

	if len(results.WrongAnswers) > 0 {
		fmt.Fprintln(out, "\nReview:")
		for _, wrong := range results.WrongAnswers {
			fmt.Fprintf(out, "- %s\n  correct: %s, you answered: %s\n", wrong.Question, wrong.CorrectAnswer, wrong.UserAnswer)
		}
	}
}

func optionText(options []string, index int) string {
	if index < 0 || index >= len(options) {
		return ""
	}
	return options[index]
}
