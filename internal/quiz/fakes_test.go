package quiz

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// sequenceRand replays values in order, each reduced modulo n. It returns n-1
// once exhausted, which leaves a Fisher–Yates shuffle untouched.
type sequenceRand struct {
	values []int
	pos    int
}

func (r *sequenceRand) IntN(n int) int {
	if r.pos >= len(r.values) {
		return n - 1
	}
	value := r.values[r.pos] % n
	r.pos++
	return value
}

// identityRand never moves anything.
type identityRand struct{}

func (identityRand) IntN(n int) int {
	return n - 1
}

type fakeKV struct {
	mu      sync.Mutex
	entries map[string]string

	getErr   error
	putErr   error
	putCalls int
}

func newFakeKV(entries map[string]string) *fakeKV {
	copied := make(map[string]string, len(entries))
	for key, value := range entries {
		copied[key] = value
	}
	return &fakeKV{entries: copied}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	value, ok := f.entries[key]
	return value, ok, nil
}

func (f *fakeKV) Put(_ context.Context, entries map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	if f.putErr != nil {
		return f.putErr
	}
	for key, value := range entries {
		f.entries[key] = value
	}
	return nil
}

func (f *fakeKV) value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.entries[key]
	return value, ok
}

type fakeResultStore struct {
	mu      sync.Mutex
	results map[string]ResultSummary

	saveErr   error
	saveCalls int
	listCalls int
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{results: make(map[string]ResultSummary)}
}

func (f *fakeResultStore) SaveResult(_ context.Context, summary ResultSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.results[summary.ResultID] = summary
	return nil
}

func (f *fakeResultStore) GetResult(_ context.Context, resultID string) (ResultSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	summary, ok := f.results[resultID]
	if !ok {
		return ResultSummary{}, ErrResultNotFound
	}
	return summary, nil
}

func (f *fakeResultStore) ListResults(_ context.Context, limit int) ([]ResultSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]ResultSummary, 0, len(f.results))
	for _, summary := range f.results {
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return rankedBefore(out[i], out[j]) })
	return applyResultLimit(out, limit), nil
}

// manualClock is advanced explicitly by tests.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Unix(1700000000, 0).UTC()}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errBoom = errors.New("boom")

func stringPtr(value string) *string {
	return &value
}

func fixedQuestion(id, text, answer string, distractions ...string) Question {
	q := Question{ID: id, QuestionText: text, Answer: answer, Type: TypeFixed}
	for idx, distraction := range distractions {
		switch idx {
		case 0:
			q.Distraction1 = distraction
		case 1:
			q.Distraction2 = distraction
		case 2:
			q.Distraction3 = distraction
		}
	}
	return q
}

func classQuestion(id, text, answer, class string) Question {
	return Question{ID: id, QuestionText: text, Answer: answer, Type: TypeClass, Class: class}
}
