package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SheetFetcher downloads the sheet export and returns the raw text alongside
// the parsed questions.
type SheetFetcher func(ctx context.Context) (raw string, questions []Question, err error)

// Observer receives lifecycle events, typically for metrics.
type Observer interface {
	SyncFinished(err error, questionCount int)
	SessionStarted()
	SessionFinished(summary ResultSummary)
}

type nopObserver struct{}

func (nopObserver) SyncFinished(error, int)       {}
func (nopObserver) SessionStarted()               {}
func (nopObserver) SessionFinished(ResultSummary) {}

// SyncInfo describes the questions currently in the cache.
type SyncInfo struct {
	QuestionCount int       `json:"question_count"`
	SyncedAt      time.Time `json:"synced_at"`
}

type ServiceOptions struct {
	Rand       Rand
	Policy     ZeroCountPolicy
	MinOptions int
	Now        func() time.Time
	NewID      func() string
	Logger     *zap.Logger
	Observer   Observer
}

type Service struct {
	cache    KeyValueStore
	results  ResultStore
	fetcher  SheetFetcher
	sessions sessionRegistry

	rand      Rand
	policy    ZeroCountPolicy
	generator OptionGenerator
	now       func() time.Time
	newID     func() string
	logger    *zap.Logger
	observer  Observer

	rankingMu sync.Mutex
	ranking   *rankingCache
}

func NewService(cache KeyValueStore, results ResultStore, fetcher SheetFetcher, opts ServiceOptions) *Service {
	s := &Service{
		cache:    cache,
		results:  results,
		fetcher:  fetcher,
		rand:     opts.Rand,
		policy:   opts.Policy,
		now:      opts.Now,
		newID:    opts.NewID,
		logger:   opts.Logger,
		observer: opts.Observer,
	}
	if s.rand == nil {
		s.rand = DefaultRand
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	s.generator = OptionGenerator{Rand: s.rand, Minimum: opts.MinOptions}
	return s
}

// Sync fetches the sheet and replaces the cached questions. Failures are
// reported to the caller and never retried.
func (s *Service) Sync(ctx context.Context) (SyncInfo, error) {
	if s.fetcher == nil {
		return SyncInfo{}, errors.New("sheet fetcher is not configured")
	}

	s.logger.Info("syncing questions from sheet")
	raw, questions, err := s.fetcher(ctx)
	if err != nil {
		s.observer.SyncFinished(err, 0)
		s.logger.Error("sheet sync failed", zap.Error(err))
		return SyncInfo{}, fmt.Errorf("sync: %w: %w", ErrSheetFetch, err)
	}
	if len(questions) == 0 && strings.TrimSpace(raw) != "" {
		s.logger.Warn("sheet conversion produced no questions; check the export format")
	}

	encoded, err := EncodeQuestions(questions)
	if err != nil {
		s.observer.SyncFinished(err, 0)
		return SyncInfo{}, fmt.Errorf("sync: encode questions: %w", err)
	}

	syncedAt := s.now().UTC()
	err = s.cache.Put(ctx, map[string]string{
		KeyRawSheet:      raw,
		KeyQuestions:     encoded,
		KeySyncTimestamp: strconv.FormatInt(syncedAt.UnixMilli(), 10),
	})
	if err != nil {
		s.observer.SyncFinished(err, 0)
		s.logger.Error("saving synced questions failed", zap.Error(err))
		return SyncInfo{}, fmt.Errorf("sync: save: %w", err)
	}

	s.observer.SyncFinished(nil, len(questions))
	s.logger.Info("sheet sync finished", zap.Int("questions", len(questions)))
	return SyncInfo{QuestionCount: len(questions), SyncedAt: syncedAt}, nil
}

// CachedQuestions returns the synced question pool as stored.
func (s *Service) CachedQuestions(ctx context.Context) ([]Question, SyncInfo, error) {
	data, found, err := s.cache.Get(ctx, KeyQuestions)
	if err != nil {
		return nil, SyncInfo{}, err
	}
	if !found {
		return nil, SyncInfo{}, &MissingDataError{Keys: []string{"question data (" + KeyQuestions + ")"}}
	}

	questions, err := ParseQuestions(data)
	if err != nil {
		return nil, SyncInfo{}, err
	}

	info, err := s.SyncInfo(ctx)
	if err != nil {
		return nil, SyncInfo{}, err
	}
	info.QuestionCount = len(questions)
	return questions, info, nil
}

func (s *Service) SyncInfo(ctx context.Context) (SyncInfo, error) {
	stamp, found, err := s.cache.Get(ctx, KeySyncTimestamp)
	if err != nil || !found {
		return SyncInfo{}, err
	}
	millis, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		return SyncInfo{}, malformed("invalid sync timestamp %q", stamp)
	}
	return SyncInfo{SyncedAt: time.UnixMilli(millis).UTC()}, nil
}

func (s *Service) GetSettings(ctx context.Context) (Settings, error) {
	quizTime, timeFound, err := s.cache.Get(ctx, KeyQuizTime)
	if err != nil {
		return Settings{}, err
	}
	quizQuestions, countFound, err := s.cache.Get(ctx, KeyQuizQuestions)
	if err != nil {
		return Settings{}, err
	}

	var missing []string
	if !timeFound {
		missing = append(missing, KeyQuizTime)
	}
	if !countFound {
		missing = append(missing, KeyQuizQuestions)
	}
	if len(missing) > 0 {
		return Settings{}, &MissingDataError{Keys: missing}
	}
	return ParseSettings(quizTime, quizQuestions)
}

func (s *Service) UpdateSettings(ctx context.Context, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.cache.Put(ctx, map[string]string{
		KeyQuizTime:      strconv.Itoa(settings.DurationMinutes),
		KeyQuizQuestions: strconv.Itoa(settings.QuestionCount),
	})
}

// SeedSettings writes defaults for whichever setting keys are absent.
func (s *Service) SeedSettings(ctx context.Context, defaults Settings) error {
	if err := defaults.Validate(); err != nil {
		return err
	}

	entries := make(map[string]string, 2)
	for key, value := range map[string]string{
		KeyQuizTime:      strconv.Itoa(defaults.DurationMinutes),
		KeyQuizQuestions: strconv.Itoa(defaults.QuestionCount),
	} {
		_, found, err := s.cache.Get(ctx, key)
		if err != nil {
			return err
		}
		if !found {
			entries[key] = value
		}
	}
	if len(entries) == 0 {
		return nil
	}
	return s.cache.Put(ctx, entries)
}

// StartSession loads the cached inputs, selects questions, fixes their options
// and starts the countdown.
func (s *Service) StartSession(ctx context.Context) (*Session, error) {
	inputs, err := LoadInputs(ctx, s.cache)
	if err != nil {
		return nil, err
	}

	requested := inputs.Settings.QuestionCount
	available := len(inputs.Questions)
	if requested > available && available > 0 {
		s.logger.Warn("more questions requested than available; using all",
			zap.Int("requested", requested),
			zap.Int("available", available))
	}

	count := s.policy.Resolve(requested, available)
	selected := SelectRandomQuestions(s.rand, inputs.Questions, count)
	if len(selected) == 0 && count > 0 {
		return nil, fmt.Errorf("%w: source has %d questions, %d were requested",
			ErrDegenerateSelection, available, requested)
	}

	questions := BuildSessionQuestions(s.generator, selected, inputs.Questions)
	for _, item := range questions {
		if !item.Question.HasAnswer() {
			s.logger.Warn("question has no correct answer; showing placeholder",
				zap.String("question_id", item.Question.ID))
		}
	}

	s.sessions.prune(s.now())

	session := NewSession(SessionConfig{
		ID:        s.newID(),
		ResultID:  s.newID(),
		Questions: questions,
		Duration:  time.Duration(inputs.Settings.DurationMinutes) * time.Minute,
		Now:       s.now,
		OnTimeout: func(session *Session, summary ResultSummary) {
			s.finished(summary)
			persistCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			// A failed save stays pending; the next Submit retries it.
			if err := s.persist(persistCtx, session, summary); err != nil {
				s.logger.Error("saving timed out result failed",
					zap.String("session_id", summary.SessionID),
					zap.Error(err))
			}
		},
	})
	s.sessions.store(session)
	s.observer.SessionStarted()

	s.logger.Info("session started",
		zap.String("session_id", session.ID),
		zap.Int("questions", len(questions)),
		zap.Int("duration_minutes", inputs.Settings.DurationMinutes))
	return session, nil
}

func (s *Service) GetSession(id string) (*Session, error) {
	session, ok := s.sessions.load(strings.TrimSpace(id))
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *Service) SelectAnswer(id string, index int, value string) error {
	session, err := s.GetSession(id)
	if err != nil {
		return err
	}
	return session.Select(index, value)
}

func (s *Service) ClearAnswer(id string, index int) error {
	session, err := s.GetSession(id)
	if err != nil {
		return err
	}
	return session.Clear(index)
}

// Submit finalizes the session and persists the result. Submitting a session
// the deadline already closed returns the stored timed-out result. A result
// whose earlier save failed is saved again before it is returned.
func (s *Service) Submit(ctx context.Context, id string) (ResultSummary, error) {
	session, err := s.GetSession(id)
	if err != nil {
		return ResultSummary{}, err
	}

	summary, finishedNow := session.Submit()
	if !finishedNow && summary.Status == "" {
		return ResultSummary{}, ErrSessionClosed
	}
	if finishedNow {
		s.finished(summary)
	}

	if err := s.persist(ctx, session, summary); err != nil {
		return summary, fmt.Errorf("error saving quiz results: %w", err)
	}
	return summary, nil
}

// Abandon tears down a session without recording a result.
func (s *Service) Abandon(id string) error {
	session, ok := s.sessions.remove(strings.TrimSpace(id))
	if !ok {
		return ErrSessionNotFound
	}
	session.Abandon()
	s.logger.Info("session abandoned", zap.String("session_id", session.ID))
	return nil
}

func (s *Service) GetResult(ctx context.Context, resultID string) (ResultSummary, error) {
	return s.results.GetResult(ctx, strings.TrimSpace(resultID))
}

// LatestResult reads the hand-off copy of the most recent result.
func (s *Service) LatestResult(ctx context.Context) (ResultSummary, error) {
	data, found, err := s.cache.Get(ctx, KeyLatestResult)
	if err != nil {
		return ResultSummary{}, err
	}
	if !found {
		return ResultSummary{}, ErrResultNotFound
	}

	var summary ResultSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return ResultSummary{}, malformed("latest result: %v", err)
	}
	return summary, nil
}

// ListResults returns stored results best first. A limit of zero or less
// returns all of them.
func (s *Service) ListResults(ctx context.Context, limit int) ([]ResultSummary, error) {
	return s.rankedResults(ctx, limit)
}

// Close abandons every live session.
func (s *Service) Close() {
	s.sessions.abandonAll()
}

// finished reports a session finalization once, when it happens.
func (s *Service) finished(summary ResultSummary) {
	s.observer.SessionFinished(summary)
	s.logger.Info("session finished",
		zap.String("session_id", summary.SessionID),
		zap.String("status", summary.Status),
		zap.Int("score", summary.Score),
		zap.Int("total", summary.TotalQuestionsAsked))
}

// persist saves the summary of session unless an earlier call already did.
func (s *Service) persist(ctx context.Context, session *Session, summary ResultSummary) error {
	session.persistMu.Lock()
	defer session.persistMu.Unlock()
	if session.persisted {
		return nil
	}

	if err := s.results.SaveResult(ctx, summary); err != nil {
		return err
	}
	s.updateCachedRanking(summary)

	encoded, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	if err := s.cache.Put(ctx, map[string]string{KeyLatestResult: string(encoded)}); err != nil {
		return err
	}
	session.persisted = true
	return nil
}
