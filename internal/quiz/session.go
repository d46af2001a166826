package quiz

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

const (
	StatusCompleted = "Completed"
	StatusSubmitted = "Submitted"
	StatusTimeOut   = "Time Out"
)

// ZeroCountPolicy decides what a requested question count of zero means.
type ZeroCountPolicy int

const (
	ZeroMeansAll ZeroCountPolicy = iota
	ZeroMeansEmpty
)

func ParseZeroCountPolicy(value string) (ZeroCountPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all":
		return ZeroMeansAll, nil
	case "empty":
		return ZeroMeansEmpty, nil
	default:
		return ZeroMeansAll, fmt.Errorf("unknown zero count policy %q (want all or empty)", value)
	}
}

func (p ZeroCountPolicy) String() string {
	if p == ZeroMeansEmpty {
		return "empty"
	}
	return "all"
}

// Resolve turns a requested count into the count handed to the sampler.
func (p ZeroCountPolicy) Resolve(requested, available int) int {
	if requested == 0 && p == ZeroMeansAll {
		return available
	}
	return requested
}

// SessionQuestion is a selected question with the options fixed for the session.
type SessionQuestion struct {
	Question Question
	Options  []string
}

// Session is one attempt. Options are generated once at creation and never
// regenerated. The first of Finish, the deadline timer or Abandon closes it.
type Session struct {
	ID        string
	ResultID  string
	Questions []SessionQuestion
	StartedAt time.Time
	Duration  time.Duration

	now func() time.Time

	mu       sync.Mutex
	answers  map[int]string
	timer    *time.Timer
	done     chan struct{}
	finished bool
	summary  ResultSummary

	// persistMu serializes saves of the summary; persisted is guarded by it.
	persistMu sync.Mutex
	persisted bool
}

// SessionConfig carries the collaborators a new session needs.
type SessionConfig struct {
	ID        string
	ResultID  string
	Questions []SessionQuestion
	Duration  time.Duration
	Now       func() time.Time
	// OnTimeout runs in the timer goroutine after a deadline finalization.
	OnTimeout func(*Session, ResultSummary)
}

func NewSession(cfg SessionConfig) *Session {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &Session{
		ID:        cfg.ID,
		ResultID:  cfg.ResultID,
		Questions: cfg.Questions,
		StartedAt: now(),
		Duration:  cfg.Duration,
		now:       now,
		answers:   make(map[int]string),
		done:      make(chan struct{}),
	}

	if len(s.Questions) > 0 && cfg.Duration > 0 {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.timer = time.AfterFunc(cfg.Duration, func() {
			summary, ok := s.Finish(StatusTimeOut)
			if ok && cfg.OnTimeout != nil {
				cfg.OnTimeout(s, summary)
			}
		})
	}
	return s
}

// BuildSessionQuestions fixes the option list of every selected question.
func BuildSessionQuestions(generator OptionGenerator, selected, pool []Question) []SessionQuestion {
	out := make([]SessionQuestion, 0, len(selected))
	for _, question := range selected {
		out = append(out, SessionQuestion{
			Question: question,
			Options:  generator.Generate(question, pool),
		})
	}
	return out
}

// Select records value as the answer to question index, replacing any earlier choice.
func (s *Session) Select(index int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return ErrSessionClosed
	}
	if index < 0 || index >= len(s.Questions) {
		return ErrQuestionOutOfRange
	}
	if !contains(s.Questions[index].Options, value) {
		return ErrInvalidAnswer
	}
	s.answers[index] = value
	return nil
}

// Clear removes the answer to question index.
func (s *Session) Clear(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return ErrSessionClosed
	}
	if index < 0 || index >= len(s.Questions) {
		return ErrQuestionOutOfRange
	}
	delete(s.answers, index)
	return nil
}

// Answer returns the current choice for question index.
func (s *Session) Answer(index int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.answers[index]
	return value, ok
}

func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// Submit finishes the session on user request. The status is Completed when
// every question has an answer and Submitted otherwise.
func (s *Session) Submit() (ResultSummary, bool) {
	return s.finish("")
}

// Finish closes the session with status and builds its summary. Only the first
// call wins; later calls return the stored summary and false.
func (s *Session) Finish(status string) (ResultSummary, bool) {
	return s.finish(status)
}

// finish picks the submit status from the answers when status is empty. The
// choice and the records are made under one lock.
func (s *Session) finish(status string) (ResultSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return s.summary, false
	}
	if status == "" {
		status = StatusSubmitted
		if len(s.answers) == len(s.Questions) {
			status = StatusCompleted
		}
	}
	s.finished = true
	s.stopTimerLocked()

	records := make([]AnswerRecord, 0, len(s.Questions))
	for idx, item := range s.Questions {
		var userAnswer *string
		if value, ok := s.answers[idx]; ok {
			userAnswer = &value
		}
		records = append(records, BuildAnswerRecord(item.Question, item.Options, userAnswer))
	}

	finishedAt := s.now()
	maxTime := int(s.Duration / time.Second)
	timeTaken := int(math.Round(finishedAt.Sub(s.StartedAt).Seconds()))
	if status == StatusTimeOut {
		timeTaken = maxTime
	}

	s.summary = ResultSummary{
		ResultID:                s.ResultID,
		SessionID:               s.ID,
		TotalQuestionsAsked:     len(s.Questions),
		AnsweredQuestionsDetail: records,
		Status:                  status,
		TimeTaken:               timeTaken,
		MaxTime:                 maxTime,
		Score:                   Score(records),
		FinishedAt:              finishedAt.UTC(),
	}
	close(s.done)
	return s.summary, true
}

// Abandon stops the timer without producing a result.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.finished = true
	s.stopTimerLocked()
	close(s.done)
}

// Done is closed once the session is finished or abandoned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

func (s *Session) Summary() (ResultSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary, s.finished && s.summary.Status != ""
}

// Remaining is the time left before the deadline, never negative.
func (s *Session) Remaining() time.Duration {
	remaining := s.Duration - s.now().Sub(s.StartedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *Session) Deadline() time.Time {
	return s.StartedAt.Add(s.Duration)
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
