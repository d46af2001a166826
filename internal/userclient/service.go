package userclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"sheet-quiz/internal/quiz"
	"sheet-quiz/internal/terminal"
)

const (
	defaultServer      = "http://127.0.0.1:8080"
	defaultListLimit   = 10
	defaultHTTPTimeout = 5 * time.Second
)

type Config struct {
	ServerURL   string
	ListLimit   int
	HTTPTimeout time.Duration
	NoColor     bool
}

func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}

	listLimit := cfg.ListLimit
	if listLimit == 0 {
		listLimit = defaultListLimit
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	client := NewHTTPClient(serverURL, &http.Client{Timeout: timeout})
	view := terminal.ResultsView{NoColor: cfg.NoColor}
	lines := terminal.ReadLines(in)

	fmt.Fprintf(out, "quiz-client\nserver=%s\n\n", serverURL)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case next, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			line = strings.TrimSpace(next)
		}
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		var err error
		switch command := strings.ToLower(args[0]); command {
		case "help":
			printHelp(out)
		case "exit":
			return nil
		case "sync":
			err = runSync(ctx, out, client)
		case "settings":
			err = runSettings(ctx, out, client, args[1:])
		case "play":
			err = runPlay(ctx, lines, out, client, view)
		case "results":
			err = runResults(ctx, out, client, view, args[1:], listLimit)
		case "report":
			err = runReport(ctx, out, client, args[1:])
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", describeClientError(err, serverURL))
		}
	}
}

func runSync(ctx context.Context, out io.Writer, client *HTTPClient) error {
	payload, err := client.Sync(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Synced %d questions at %s\n", payload.QuestionCount, payload.SyncedAt.Local().Format(time.DateTime))
	return nil
}

func runSettings(ctx context.Context, out io.Writer, client *HTTPClient, args []string) error {
	if len(args) == 0 {
		settings, err := client.GetSettings(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Time: %d minutes\nQuestions: %d\n", settings.DurationMinutes, settings.QuestionCount)
		return nil
	}
	if len(args) != 2 {
		fmt.Fprintln(out, "usage: settings <minutes> <questions>")
		return nil
	}

	minutes, err := strconv.Atoi(args[0])
	if err != nil {
		return errors.New("minutes must be an integer")
	}
	count, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.New("questions must be an integer")
	}
	if err := client.UpdateSettings(ctx, quiz.Settings{DurationMinutes: minutes, QuestionCount: count}); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved: %d minutes, %d questions\n", minutes, count)
	return nil
}

func runPlay(ctx context.Context, lines <-chan string, out io.Writer, client *HTTPClient, view terminal.ResultsView) error {
	session, err := client.StartSession(ctx)
	if err != nil {
		return err
	}

	questions := make([]terminal.Question, len(session.Questions))
	for idx, item := range session.Questions {
		questions[idx] = terminal.Question{Text: item.QuestionText, Options: item.Options}
	}

	// The server closes the session at the deadline; mirror it locally so input
	// stops at the same time.
	deadline := time.Now().Add(time.Duration(session.RemainingSeconds) * time.Second)
	expired := make(chan struct{})
	timer := time.AfterFunc(time.Until(deadline), func() { close(expired) })
	defer timer.Stop()

	fmt.Fprintf(out, "%d questions, %s on the clock.\n", len(questions), quiz.FormatClock(session.RemainingSeconds))
	_, err = terminal.Play(ctx, lines, out, terminal.Round{
		Questions: questions,
		Remaining: func() time.Duration {
			if remaining := time.Until(deadline); remaining > 0 {
				return remaining
			}
			return 0
		},
		Expired: expired,
		Choose: func(ctx context.Context, index int, letter string) error {
			err := client.SelectLetter(ctx, session.SessionID, index, letter)
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
				return terminal.ErrInvalidChoice
			}
			return err
		},
	})
	if err != nil {
		abandonCtx, cancel := context.WithTimeout(context.Background(), defaultHTTPTimeout)
		defer cancel()
		_ = client.Abandon(abandonCtx, session.SessionID)
		return err
	}

	summary, err := client.Submit(ctx, session.SessionID)
	if err != nil {
		return err
	}
	view.Render(out, summary)
	return nil
}

func runResults(ctx context.Context, out io.Writer, client *HTTPClient, view terminal.ResultsView, args []string, listLimit int) error {
	if len(args) > 0 {
		if _, err := strconv.Atoi(args[0]); err != nil {
			summary, err := client.GetResult(ctx, args[0])
			if err != nil {
				return err
			}
			view.Render(out, summary)
			return nil
		}
	}

	limit, err := parseSignedLimit(args, 0, listLimit)
	if err != nil {
		return fmt.Errorf("invalid results limit: %w", err)
	}
	results, err := client.ListResults(ctx, limit)
	if err != nil {
		return err
	}
	view.RenderList(out, results)
	return nil
}

func runReport(ctx context.Context, out io.Writer, client *HTTPClient, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(out, "usage: report <result_id|latest> <file.pdf>")
		return nil
	}

	resultID := args[0]
	if strings.EqualFold(resultID, "latest") {
		summary, err := client.GetResult(ctx, "latest")
		if err != nil {
			return err
		}
		resultID = summary.ResultID
	}

	file, err := os.Create(args[1])
	if err != nil {
		return err
	}
	if err := client.DownloadReport(ctx, resultID, file); err != nil {
		_ = file.Close()
		_ = os.Remove(args[1])
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", args[1])
	return nil
}
