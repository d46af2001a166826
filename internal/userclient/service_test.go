package userclient

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sheet-quiz/internal/httpapi"
	"sheet-quiz/internal/quiz"
	"sheet-quiz/internal/quiz/sqlite"
)

type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.NewSQLiteStore(filepath.Join(t.TempDir(), "client.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	questions := []quiz.Question{
		{ID: "1", QuestionText: "2+2?", Answer: "4", Type: quiz.TypeFixed, Distraction1: "3"},
		{ID: "2", QuestionText: "Sky color?", Answer: "Blue", Type: quiz.TypeFixed, Distraction1: "Green"},
	}
	fetcher := func(context.Context) (string, []quiz.Question, error) {
		return "id,questionText,Answer\n", questions, nil
	}
	service := quiz.NewService(store, store, fetcher, quiz.ServiceOptions{Rand: firstRand{}})
	t.Cleanup(service.Close)

	server := httptest.NewServer(httpapi.NewRouter(httpapi.NewAPI(service, nil), httpapi.RouterOptions{}))
	t.Cleanup(server.Close)
	return server
}

func TestParseSignedLimit(t *testing.T) {
	if got, err := parseSignedLimit([]string{}, 0, 10); err != nil || got != 10 {
		t.Fatalf("default parseSignedLimit = (%d, %v), want (10, nil)", got, err)
	}
	if got, err := parseSignedLimit([]string{"-1"}, 0, 10); err != nil || got != -1 {
		t.Fatalf("negative parseSignedLimit = (%d, %v), want (-1, nil)", got, err)
	}
	if _, err := parseSignedLimit([]string{"abc"}, 0, 10); err == nil {
		t.Fatalf("expected parse error for non-integer limit")
	}
}

func TestRunReportsUnavailableService(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), strings.NewReader("sync\n"), &out, Config{
		ServerURL:   "http://127.0.0.1:1",
		HTTPTimeout: time.Second,
		NoColor:     true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "quiz service unavailable at http://127.0.0.1:1") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRunPlayBeforeSetup(t *testing.T) {
	server := newTestServer(t)

	var out bytes.Buffer
	err := Run(context.Background(), strings.NewReader("play\nexit\n"), &out, Config{ServerURL: server.URL, NoColor: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "run `sync` and check `settings`") {
		t.Fatalf("missing setup hint: %q", out.String())
	}
}

func TestRunFullRound(t *testing.T) {
	server := newTestServer(t)
	reportPath := filepath.Join(t.TempDir(), "report.pdf")

	input := strings.Join([]string{
		"sync",
		"settings 5 2",
		"play",
		"z",
		"a",
		"a",
		"results",
		"report latest " + reportPath,
		"exit",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := Run(context.Background(), strings.NewReader(input), &out, Config{ServerURL: server.URL, NoColor: true}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Synced 2 questions",
		"Saved: 5 minutes, 2 questions",
		"2 questions, 05:00 on the clock.",
		"Invalid input. Please enter a letter A-B.",
		"Status: Completed",
		"1. ",
		"Wrote " + reportPath,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}
