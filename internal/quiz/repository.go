package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Cache keys. They match the keys the browser version kept in local storage so
// an exported cache stays readable by both.
const (
	KeyRawSheet      = "rawSpreadsheetCsvData"
	KeyQuestions     = "structuredSpreadsheetJsData_v2"
	KeySyncTimestamp = "structuredSpreadsheetJsData_v2_timestamp"
	KeyQuizTime      = "quizTime"
	KeyQuizQuestions = "quizQuestions"
	KeyLatestResult  = "quizResults"
)

var (
	ErrMalformedData       = errors.New("malformed quiz data")
	ErrDegenerateSelection = errors.New("no questions could be selected")
	ErrInvalidSettings     = errors.New("invalid quiz settings")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionClosed       = errors.New("session already finished")
	ErrInvalidAnswer       = errors.New("answer is not one of the question's options")
	ErrQuestionOutOfRange  = errors.New("question index out of range")
	ErrResultNotFound      = errors.New("result not found")
	ErrSheetFetch          = errors.New("spreadsheet fetch failed")
)

// MissingDataError lists every required cache key that was absent.
type MissingDataError struct {
	Keys []string
}

func (e *MissingDataError) Error() string {
	return "critical data missing from cache: " + strings.Join(e.Keys, ", ")
}

// IsSetupError reports whether err should send the user back to quiz setup.
func IsSetupError(err error) bool {
	var missing *MissingDataError
	return errors.As(err, &missing) ||
		errors.Is(err, ErrMalformedData) ||
		errors.Is(err, ErrDegenerateSelection)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedData, fmt.Sprintf(format, args...))
}

// KeyValueStore is the local cache the importer writes and the loader reads.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Put(ctx context.Context, entries map[string]string) error
}

// ResultSummary is the finalized attempt handed to the results view.
type ResultSummary struct {
	ResultID                string         `json:"resultId"`
	SessionID               string         `json:"sessionId"`
	TotalQuestionsAsked     int            `json:"totalQuestionsAsked"`
	AnsweredQuestionsDetail []AnswerRecord `json:"answeredQuestionsDetail"`
	Status                  string         `json:"status"`
	TimeTaken               int            `json:"timeTaken"`
	MaxTime                 int            `json:"maxTime"`
	Score                   int            `json:"score"`
	FinishedAt              time.Time      `json:"finishedAt"`
}

type ResultStore interface {
	SaveResult(ctx context.Context, summary ResultSummary) error
	GetResult(ctx context.Context, resultID string) (ResultSummary, error)
	ListResults(ctx context.Context, limit int) ([]ResultSummary, error)
}
