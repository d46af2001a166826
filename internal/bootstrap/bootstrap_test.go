package bootstrap

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"sheet-quiz/internal/quiz"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestOpenSeedsDefaultSettings(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "database:\n  path: "+filepath.Join(dir, "quiz.db")+"\nquiz:\n  duration_minutes: 3\n  question_count: 4\n")

	var logs bytes.Buffer
	rt, err := Open(context.Background(), Options{ConfigDir: dir, LogOutput: &logs})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rt.Close()

	settings, err := rt.Service.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings != (quiz.Settings{DurationMinutes: 3, QuestionCount: 4}) {
		t.Fatalf("settings = %+v", settings)
	}
}

func TestOpenKeepsStoredSettings(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "database:\n  path: "+filepath.Join(dir, "quiz.db")+"\n")

	rt, err := Open(context.Background(), Options{ConfigDir: dir, LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := rt.Service.UpdateSettings(context.Background(), quiz.Settings{DurationMinutes: 7, QuestionCount: 1}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rt, err = Open(context.Background(), Options{ConfigDir: dir, LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer rt.Close()

	settings, err := rt.Service.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.DurationMinutes != 7 || settings.QuestionCount != 1 {
		t.Fatalf("stored settings were overwritten: %+v", settings)
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "sheet:\n  format: xlsx\n")

	if _, err := Open(context.Background(), Options{ConfigDir: dir}); err == nil {
		t.Fatal("expected config error")
	}
}
