package remote

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultServer      = "http://127.0.0.1:8080"
	defaultHTTPTimeout = 5 * time.Second
	maxInvalidAnswers  = 3
)

type Config struct {
	ServerURL   string
	HTTPTimeout time.Duration
}

// Run drives a trivia-service instance interactively: a small command loop
// plus a guided play mode for a full quiz session.
func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	client := NewHTTPClient(serverURL, &http.Client{Timeout: timeout})
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "history-trivia remote\nserver=%s\n\n", serverURL)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		switch command {
		case "help":
			printHelp(out)
		case "exit", "quit":
			return nil
		case "play":
			if len(args) < 2 {
				fmt.Fprintln(out, "usage: play <beginner|intermediate|advanced>")
				continue
			}
			if err := playSession(ctx, client, reader, out, args[1]); err != nil {
				printCommandError(out, err)
			}
		case "progress":
			record, err := client.Overview(ctx)
			if err != nil {
				printCommandError(out, err)
				continue
			}
			fmt.Fprintf(out, "level %d (%d/%d xp), %d points, %d day streak\n",
				record.Level, record.Experience, 100*record.Level*record.Level, record.TotalPoints, record.Streak)
			fmt.Fprintf(out, "answered %d questions, %d correct (%d%%), %d figures unlocked, %d badges\n",
				record.Statistics.TotalQuestions, record.Statistics.CorrectAnswers,
				record.Statistics.AccuracyRate, len(record.UnlockedFigures), len(record.Badges))
		case "badges":
			badges, err := client.Badges(ctx)
			if err != nil {
				printCommandError(out, err)
				continue
			}
			for _, badge := range badges {
				marker := " "
				if badge.Held {
					marker = "x"
				}
				fmt.Fprintf(out, "[%s] %s %s\n", marker, badge.Icon, badge.Name)
			}
		case "export":
			document, err := client.Export(ctx)
			if err != nil {
				printCommandError(out, err)
				continue
			}
			fmt.Fprintln(out, string(document))
		default:
			fmt.Fprintf(out, "unknown command %q, try help\n", command)
		}
	}
}

func playSession(ctx context.Context, client *HTTPClient, reader *bufio.Reader, out io.Writer, difficulty string) error {
	started, err := client.StartQuiz(ctx, difficulty)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Starting %s quiz with %d questions.\n", started.Difficulty, started.QuestionCount)

	for {
		question, err := client.CurrentQuestion(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\nQ%d/%d [%s]: %s\n\n", question.QuestionNumber, question.QuestionCount, question.Category, question.Prompt)
		for idx, option := range question.Options {
			fmt.Fprintf(out, "%c. %s\n", 'A'+idx, option)
		}
		fmt.Fprintln(out)

		chosenIndex, ok := readLetter(reader, out, len(question.Options))
		if !ok {
			chosenIndex = -1
			fmt.Fprintln(out, "Skipping.")
		}

		feedback, err := client.Answer(ctx, chosenIndex)
		if err != nil {
			return err
		}

		if feedback.Correct {
			fmt.Fprintf(out, "Correct! +%d points\n", feedback.Points)
		} else {
			fmt.Fprintf(out, "Wrong. Correct answer was %c.\n", 'A'+feedback.CorrectIndex)
		}
		if feedback.Explanation != "" {
			fmt.Fprintln(out, feedback.Explanation)
		}

		hasNext, err := client.Next(ctx)
		if err != nil {
			return err
		}
		if !hasNext {
			break
		}
	}

	results, err := client.Results(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nFinal score: %d points, %d/%d correct (%d%%), streak %d\n",
		results.Score, results.CorrectAnswers, results.TotalQuestions, results.Accuracy, results.Streak)
	if results.LevelUp.LeveledUp {
		fmt.Fprintf(out, "Level up! %d -> %d\n", results.LevelUp.OldLevel, results.LevelUp.NewLevel)
	}
	for _, badge := range results.NewBadges {
		fmt.Fprintf(out, "New badge: %s %s\n", badge.Icon, badge.Name)
	}
	return nil
}

func readLetter(reader *bufio.Reader, out io.Writer, optionCount int) (int, bool) {
	if optionCount < 1 {
		return -1, false
	}

	maxLetter := byte('A' + optionCount - 1)

	for attempt := 1; attempt <= maxInvalidAnswers; attempt++ {
		line, err := reader.ReadString('\n')
		if err != nil {
			return -1, false
		}

		line = strings.ToUpper(strings.TrimSpace(line))
		if len(line) == 1 && line[0] >= 'A' && line[0] <= maxLetter {
			return int(line[0] - 'A'), true
		}

		if attempt < maxInvalidAnswers {
			fmt.Fprintf(out, "Invalid input. Please enter a letter A-%c.\n", maxLetter)
		}
	}

	return -1, false
}

func printCommandError(out io.Writer, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(out, "error: %s\n", apiErr.Error())
		return
	}
	fmt.Fprintf(out, "error: %v\n", err)
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "commands:")
	fmt.Fprintln(out, "  play <difficulty>  start and play a full quiz session")
	fmt.Fprintln(out, "  progress           show level, points and streak")
	fmt.Fprintln(out, "  badges             list the badge catalog with held markers")
	fmt.Fprintln(out, "  export             print the serialized progress record")
	fmt.Fprintln(out, "  help               show this help")
	fmt.Fprintln(out, "  exit               quit")
}
