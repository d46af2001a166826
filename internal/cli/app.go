package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"sheet-quiz/internal/quiz"
	"sheet-quiz/internal/report"
	"sheet-quiz/internal/terminal"
)

const defaultResultsLimit = 10

// App runs the quiz against a local service.
type App struct {
	Service *quiz.Service
	View    terminal.ResultsView
}

func (a *App) Run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		printUsage(out)
		return errors.New("missing command")
	}

	switch command, rest := strings.ToLower(args[0]), args[1:]; command {
	case "sync":
		return a.runSync(ctx, out)
	case "show":
		return a.runShow(ctx, out)
	case "settings":
		return a.runSettings(ctx, out, rest)
	case "play":
		return a.runPlay(ctx, terminal.ReadLines(in), out)
	case "results":
		return a.runResults(ctx, out, rest)
	case "report":
		return a.runReport(ctx, out, rest)
	case "help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("unknown command %q", command)
	}
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage: quiz-cli <command>")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  sync                          fetch the sheet into the local cache")
	fmt.Fprintln(out, "  show                          print the cached question table")
	fmt.Fprintln(out, "  settings [minutes questions]  show or change quiz settings")
	fmt.Fprintln(out, "  play                          take a timed quiz")
	fmt.Fprintln(out, "  results [latest|<id>|limit]   list or show results")
	fmt.Fprintln(out, "  report <id> <file.pdf>        write a PDF report")
}

func (a *App) runSync(ctx context.Context, out io.Writer) error {
	info, err := a.Service.Sync(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Synced %d questions at %s\n", info.QuestionCount, info.SyncedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func (a *App) runShow(ctx context.Context, out io.Writer) error {
	questions, info, err := a.Service.CachedQuestions(ctx)
	if err != nil {
		return explainSetup(out, err)
	}

	fmt.Fprintf(out, "%d questions", len(questions))
	if !info.SyncedAt.IsZero() {
		fmt.Fprintf(out, ", last synced %s", info.SyncedAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(out)
	if len(questions) == 0 {
		return nil
	}

	columns := quiz.Columns(questions)
	rows := make([][]string, 0, len(questions))
	for _, question := range questions {
		row := make([]string, len(columns))
		for idx, column := range columns {
			row[idx] = question.Field(column)
		}
		rows = append(rows, row)
	}

	grid := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(columns...).
		Rows(rows...)
	fmt.Fprintln(out, grid.Render())
	return nil
}

func (a *App) runSettings(ctx context.Context, out io.Writer, args []string) error {
	if len(args) == 0 {
		settings, err := a.Service.GetSettings(ctx)
		if err != nil {
			return explainSetup(out, err)
		}
		fmt.Fprintf(out, "Time: %d minutes\nQuestions: %d\n", settings.DurationMinutes, settings.QuestionCount)
		return nil
	}
	if len(args) != 2 {
		return errors.New("usage: settings <minutes> <questions>")
	}

	minutes, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("minutes must be an integer: %q", args[0])
	}
	count, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("questions must be an integer: %q", args[1])
	}

	settings := quiz.Settings{DurationMinutes: minutes, QuestionCount: count}
	if err := a.Service.UpdateSettings(ctx, settings); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved: %d minutes, %d questions\n", minutes, count)
	return nil
}

func (a *App) runPlay(ctx context.Context, lines <-chan string, out io.Writer) error {
	session, err := a.Service.StartSession(ctx)
	if err != nil {
		return explainSetup(out, err)
	}

	questions := make([]terminal.Question, len(session.Questions))
	for idx, item := range session.Questions {
		questions[idx] = terminal.Question{
			Text:    item.Question.QuestionText,
			Options: quiz.LetteredOptions(item.Options),
		}
	}

	fmt.Fprintf(out, "%d questions, %s on the clock.\n", len(questions), quiz.FormatClock(int(session.Duration.Seconds())))
	_, err = terminal.Play(ctx, lines, out, terminal.Round{
		Questions: questions,
		Remaining: session.Remaining,
		Expired:   session.Done(),
		Choose: func(_ context.Context, index int, letter string) error {
			value, ok := quiz.OptionForLetter(session.Questions[index].Options, letter)
			if !ok {
				return terminal.ErrInvalidChoice
			}
			return a.Service.SelectAnswer(session.ID, index, value)
		},
	})
	if err != nil {
		_ = a.Service.Abandon(session.ID)
		return err
	}

	summary, err := a.Service.Submit(ctx, session.ID)
	if err != nil {
		if summary.Status == "" {
			return err
		}
		fmt.Fprintf(out, "warning: %v\n", err)
	}
	a.View.Render(out, summary)
	return nil
}

func (a *App) runResults(ctx context.Context, out io.Writer, args []string) error {
	if len(args) == 0 {
		results, err := a.Service.ListResults(ctx, defaultResultsLimit)
		if err != nil {
			return err
		}
		a.View.RenderList(out, results)
		return nil
	}

	if limit, err := strconv.Atoi(args[0]); err == nil {
		results, err := a.Service.ListResults(ctx, limit)
		if err != nil {
			return err
		}
		a.View.RenderList(out, results)
		return nil
	}

	summary, err := a.lookupResult(ctx, args[0])
	if err != nil {
		return err
	}
	a.View.Render(out, summary)
	return nil
}

func (a *App) runReport(ctx context.Context, out io.Writer, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: report <id|latest> <file.pdf>")
	}

	summary, err := a.lookupResult(ctx, args[0])
	if err != nil {
		return err
	}

	data, err := report.Bytes(summary)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(out, "Wrote %s\n", args[1])
	return nil
}

func (a *App) lookupResult(ctx context.Context, id string) (quiz.ResultSummary, error) {
	if strings.EqualFold(id, "latest") {
		return a.Service.LatestResult(ctx)
	}
	return a.Service.GetResult(ctx, id)
}

// explainSetup adds a hint for errors that mean the quiz is not set up yet.
func explainSetup(out io.Writer, err error) error {
	if quiz.IsSetupError(err) {
		fmt.Fprintln(out, "The quiz is not ready. Run `quiz-cli sync` and check `quiz-cli settings`.")
	}
	return err
}
