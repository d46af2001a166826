//go:build cucumber

package quiz

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/cucumber/godog"
)

// TestQuizSessionScenarios runs the session feature scenarios.
func TestQuizSessionScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "quiz-session",
		ScenarioInitializer: InitializeQuizSessionScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("features", "quiz_session.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeQuizSessionScenario wires steps for quiz session scenarios.
func InitializeQuizSessionScenario(ctx *godog.ScenarioContext) {
	state := &quizScenarioState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		if state.service != nil {
			state.service.Close()
		}
		return ctx, nil
	})

	ctx.Step(`^a pool of (\d+) fixed questions with three distractions$`, state.givenFixedQuestions)
	ctx.Step(`^(\d+) class questions in class "([^"]+)"$`, state.givenClassQuestions)
	ctx.Step(`^a fixed question without an answer$`, state.givenUnansweredQuestion)
	ctx.Step(`^quiz settings of (\d+) minutes and (\d+) questions$`, state.givenSettings)
	ctx.Step(`^I start a quiz$`, state.whenStart)
	ctx.Step(`^I answer every question correctly$`, state.whenAnswerAllCorrectly)
	ctx.Step(`^I pick the missing answer placeholder$`, state.whenPickPlaceholder)
	ctx.Step(`^I pick an option other than the placeholder$`, state.whenPickOther)
	ctx.Step(`^I submit$`, state.whenSubmit)
	ctx.Step(`^the session has (\d+) distinct questions from the pool$`, state.thenDistinctQuestions)
	ctx.Step(`^every question has (\d+) options$`, state.thenOptionCount)
	ctx.Step(`^every question has at most (\d+) options$`, state.thenAtMostOptions)
	ctx.Step(`^the options contain the missing answer placeholder$`, state.thenPlaceholderShown)
	ctx.Step(`^the result status is "([^"]+)"$`, state.thenStatus)
	ctx.Step(`^the score is (\d+)$`, state.thenScore)
}

type quizScenarioState struct {
	pool     []Question
	settings Settings
	service  *Service
	session  *Session
	summary  ResultSummary
}

// reset clears scenario state.
func (s *quizScenarioState) reset() {
	s.pool = nil
	s.settings = Settings{}
	s.service = nil
	s.session = nil
	s.summary = ResultSummary{}
}

func (s *quizScenarioState) nextID() string {
	return strconv.Itoa(len(s.pool) + 1)
}

func (s *quizScenarioState) givenFixedQuestions(count int) error {
	for i := 0; i < count; i++ {
		id := s.nextID()
		s.pool = append(s.pool, fixedQuestion(id, "Fixed "+id, "answer "+id,
			"wrong "+id+"a", "wrong "+id+"b", "wrong "+id+"c"))
	}
	return nil
}

func (s *quizScenarioState) givenClassQuestions(count int, class string) error {
	for i := 0; i < count; i++ {
		id := s.nextID()
		s.pool = append(s.pool, classQuestion(id, "Class "+id, class+" "+id, class))
	}
	return nil
}

func (s *quizScenarioState) givenUnansweredQuestion() error {
	id := s.nextID()
	s.pool = append(s.pool, fixedQuestion(id, "Broken "+id, "", "first", "second"))
	return nil
}

func (s *quizScenarioState) givenSettings(minutes, count int) error {
	s.settings = Settings{DurationMinutes: minutes, QuestionCount: count}
	return nil
}

func (s *quizScenarioState) whenStart() error {
	encoded, err := EncodeQuestions(s.pool)
	if err != nil {
		return err
	}
	kv := newFakeKV(map[string]string{
		KeyQuizTime:      strconv.Itoa(s.settings.DurationMinutes),
		KeyQuizQuestions: strconv.Itoa(s.settings.QuestionCount),
		KeyQuestions:     encoded,
	})
	s.service = NewService(kv, newFakeResultStore(), nil, ServiceOptions{})

	session, err := s.service.StartSession(context.Background())
	if err != nil {
		return err
	}
	s.session = session
	return nil
}

func (s *quizScenarioState) whenAnswerAllCorrectly() error {
	for idx, item := range s.session.Questions {
		if err := s.service.SelectAnswer(s.session.ID, idx, item.Question.CorrectAnswer()); err != nil {
			return fmt.Errorf("question %d: %w", idx, err)
		}
	}
	return nil
}

func (s *quizScenarioState) whenPickPlaceholder() error {
	return s.service.SelectAnswer(s.session.ID, 0, PlaceholderMissingAnswer)
}

func (s *quizScenarioState) whenPickOther() error {
	for _, option := range s.session.Questions[0].Options {
		if option != PlaceholderMissingAnswer {
			return s.service.SelectAnswer(s.session.ID, 0, option)
		}
	}
	return errors.New("no option besides the placeholder")
}

func (s *quizScenarioState) whenSubmit() error {
	summary, err := s.service.Submit(context.Background(), s.session.ID)
	if err != nil {
		return err
	}
	s.summary = summary
	return nil
}

func (s *quizScenarioState) thenDistinctQuestions(count int) error {
	if len(s.session.Questions) != count {
		return fmt.Errorf("expected %d questions, got %d", count, len(s.session.Questions))
	}
	inPool := make(map[string]bool, len(s.pool))
	for _, q := range s.pool {
		inPool[q.ID] = true
	}
	seen := make(map[string]bool, count)
	for _, item := range s.session.Questions {
		if !inPool[item.Question.ID] {
			return fmt.Errorf("question %q is not from the pool", item.Question.ID)
		}
		if seen[item.Question.ID] {
			return fmt.Errorf("question %q selected twice", item.Question.ID)
		}
		seen[item.Question.ID] = true
	}
	return nil
}

func (s *quizScenarioState) thenOptionCount(count int) error {
	for idx, item := range s.session.Questions {
		if len(item.Options) != count {
			return fmt.Errorf("question %d has options %v, want %d", idx, item.Options, count)
		}
	}
	return nil
}

func (s *quizScenarioState) thenAtMostOptions(count int) error {
	for idx, item := range s.session.Questions {
		if len(item.Options) > count {
			return fmt.Errorf("question %d has options %v, want at most %d", idx, item.Options, count)
		}
	}
	return nil
}

func (s *quizScenarioState) thenPlaceholderShown() error {
	if !contains(s.session.Questions[0].Options, PlaceholderMissingAnswer) {
		return fmt.Errorf("placeholder missing from %v", s.session.Questions[0].Options)
	}
	return nil
}

func (s *quizScenarioState) thenStatus(status string) error {
	if s.summary.Status != status {
		return fmt.Errorf("expected status %q, got %q", status, s.summary.Status)
	}
	return nil
}

func (s *quizScenarioState) thenScore(score int) error {
	if s.summary.Score != score {
		return fmt.Errorf("expected score %d, got %d", score, s.summary.Score)
	}
	return nil
}
