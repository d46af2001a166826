package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"sheet-quiz/internal/quiz"
)

// ErrInvalidChoice is returned by Round.Choose when the typed letter does not
// name one of the options.
var ErrInvalidChoice = errors.New("invalid choice")

// Outcome tells the caller how a round ended.
type Outcome int

const (
	OutcomeSubmitted Outcome = iota
	OutcomeTimedOut
	OutcomeInputClosed
)

type Question struct {
	Text    string
	Options []quiz.Option
}

// Round is one play-through driven from the terminal.
type Round struct {
	Questions []Question
	Remaining func() time.Duration
	// Expired is closed when the deadline passes.
	Expired <-chan struct{}
	Choose  func(ctx context.Context, index int, letter string) error
}

// Play walks the questions in order. Each prompt shows the remaining time;
// a letter answers, "skip" moves on and "submit" ends the round early.
func Play(ctx context.Context, lines <-chan string, out io.Writer, round Round) (Outcome, error) {
	for idx, question := range round.Questions {
		printQuestion(out, idx+1, len(round.Questions), question)

	prompt:
		for {
			fmt.Fprintf(out, "[%s] Your answer (%s, skip, submit): ", clock(round.Remaining()), letterRange(len(question.Options)))

			select {
			case <-ctx.Done():
				return OutcomeInputClosed, ctx.Err()
			case <-round.Expired:
				fmt.Fprintln(out, "\nTime is up.")
				return OutcomeTimedOut, nil
			case line, ok := <-lines:
				if !ok {
					fmt.Fprintln(out)
					return OutcomeInputClosed, nil
				}

				switch command := strings.ToLower(strings.TrimSpace(line)); command {
				case "":
					continue
				case "skip":
					break prompt
				case "submit":
					return OutcomeSubmitted, nil
				default:
					err := round.Choose(ctx, idx, command)
					if errors.Is(err, ErrInvalidChoice) || errors.Is(err, quiz.ErrInvalidAnswer) {
						fmt.Fprintf(out, "Invalid input. Please enter a letter %s.\n", letterRange(len(question.Options)))
						continue
					}
					if err != nil {
						return OutcomeInputClosed, err
					}
					break prompt
				}
			}
		}
	}
	return OutcomeSubmitted, nil
}

func printQuestion(out io.Writer, number, total int, question Question) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Q%d/%d: %s\n\n", number, total, question.Text)
	for _, option := range question.Options {
		fmt.Fprintf(out, "%s. %s\n", option.Letter, option.Text)
	}
	fmt.Fprintln(out)
}

func letterRange(optionCount int) string {
	if optionCount <= 1 {
		return "A"
	}
	return fmt.Sprintf("A-%c", 'A'+optionCount-1)
}

func clock(remaining time.Duration) string {
	return quiz.FormatClock(int(math.Ceil(remaining.Seconds())))
}
