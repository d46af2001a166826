package httpapi

import (
	"time"

	"sheet-quiz/internal/quiz"
)

type syncResponse struct {
	QuestionCount int       `json:"question_count"`
	SyncedAt      time.Time `json:"synced_at"`
}

type questionsResponse struct {
	QuestionCount int             `json:"question_count"`
	SyncedAt      *time.Time      `json:"synced_at,omitempty"`
	Columns       []string        `json:"columns"`
	Questions     []quiz.Question `json:"questions"`
}

type settingsRequest struct {
	DurationMinutes *int `json:"duration_minutes"`
	QuestionCount   *int `json:"question_count"`
}

type sessionQuestionResponse struct {
	Index        int           `json:"index"`
	QuestionID   string        `json:"question_id"`
	QuestionText string        `json:"question_text"`
	Options      []quiz.Option `json:"options"`
	Selected     *string       `json:"selected,omitempty"`
}

type sessionResponse struct {
	SessionID        string                    `json:"session_id"`
	ResultID         string                    `json:"result_id"`
	Status           string                    `json:"status"`
	StartedAt        time.Time                 `json:"started_at"`
	Deadline         time.Time                 `json:"deadline"`
	RemainingSeconds int                       `json:"remaining_seconds"`
	RemainingClock   string                    `json:"remaining_clock"`
	AnsweredCount    int                       `json:"answered_count"`
	Questions        []sessionQuestionResponse `json:"questions"`
	Result           *quiz.ResultSummary       `json:"result,omitempty"`
}

type answerRequest struct {
	Answer *string `json:"answer,omitempty"`
	Letter string  `json:"letter,omitempty"`
	Clear  bool    `json:"clear,omitempty"`
}

type resultsResponse struct {
	Results []quiz.ResultSummary `json:"results"`
}

type errorResponse struct {
	Error     string `json:"error"`
	SetupPath string `json:"setup_path,omitempty"`
}
