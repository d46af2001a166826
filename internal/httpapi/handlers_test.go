package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"sheet-quiz/internal/quiz"
	"sheet-quiz/internal/quiz/sqlite"
)

type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

func sampleQuestions() []quiz.Question {
	return []quiz.Question{
		{ID: "1", QuestionText: "2+2?", Answer: "4", Type: quiz.TypeFixed, Distraction1: "3", Distraction2: "5"},
		{ID: "2", QuestionText: "Sky color?", Answer: "Blue", Type: quiz.TypeFixed, Distraction1: "Green"},
	}
}

func staticFetcher(questions []quiz.Question) quiz.SheetFetcher {
	return func(context.Context) (string, []quiz.Question, error) {
		return "id,questionText,Answer\n", questions, nil
	}
}

func newTestHandler(t *testing.T, fetcher quiz.SheetFetcher) (http.Handler, *quiz.Service) {
	t.Helper()

	store, err := sqlite.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	service := quiz.NewService(store, store, fetcher, quiz.ServiceOptions{Rand: firstRand{}})
	t.Cleanup(service.Close)
	return NewRouter(NewAPI(service, nil), RouterOptions{}), service
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q failed: %v", rec.Body.String(), err)
	}
}

func TestParseLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/results", nil)
	if got, err := parseLimit(req, 10); err != nil || got != 10 {
		t.Fatalf("default parseLimit = (%d, %v), want (10, nil)", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/results?limit=-1", nil)
	if got, err := parseLimit(req, 10); err != nil || got != -1 {
		t.Fatalf("negative parseLimit = (%d, %v), want (-1, nil)", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/results?limit=abc", nil)
	if _, err := parseLimit(req, 10); err == nil {
		t.Fatalf("expected integer validation error")
	}
}

func TestParseIndex(t *testing.T) {
	for _, tc := range []struct {
		value   string
		want    int
		wantErr bool
	}{
		{value: "0", want: 0},
		{value: " 3 ", want: 3},
		{value: "-1", wantErr: true},
		{value: "x", wantErr: true},
	} {
		got, err := parseIndex(tc.value)
		if (err != nil) != tc.wantErr {
			t.Fatalf("parseIndex(%q) error = %v, wantErr %v", tc.value, err, tc.wantErr)
		}
		if !tc.wantErr && got != tc.want {
			t.Fatalf("parseIndex(%q) = %d, want %d", tc.value, got, tc.want)
		}
	}
}

func TestWriteServiceErrorMapsStatus(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want int
	}{
		{name: "missing", err: &quiz.MissingDataError{Keys: []string{quiz.KeyQuizTime}}, want: http.StatusConflict},
		{name: "degenerate", err: quiz.ErrDegenerateSelection, want: http.StatusConflict},
		{name: "session", err: quiz.ErrSessionNotFound, want: http.StatusNotFound},
		{name: "result", err: quiz.ErrResultNotFound, want: http.StatusNotFound},
		{name: "closed", err: quiz.ErrSessionClosed, want: http.StatusConflict},
		{name: "answer", err: quiz.ErrInvalidAnswer, want: http.StatusBadRequest},
		{name: "fetch", err: quiz.ErrSheetFetch, want: http.StatusBadGateway},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tc.err)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestStartSessionBeforeSyncPointsToSetup(t *testing.T) {
	handler, _ := newTestHandler(t, staticFetcher(sampleQuestions()))

	rec := doRequest(t, handler, http.MethodPost, "/sessions", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusConflict, rec.Body.String())
	}
	var body errorResponse
	decodeBody(t, rec, &body)
	if body.SetupPath != setupPath {
		t.Fatalf("setup_path = %q, want %q", body.SetupPath, setupPath)
	}
	if !strings.Contains(body.Error, quiz.KeyQuizTime) || !strings.Contains(body.Error, quiz.KeyQuestions) {
		t.Fatalf("error %q should list the missing keys", body.Error)
	}
}

func TestSyncAndQuestions(t *testing.T) {
	handler, _ := newTestHandler(t, staticFetcher(sampleQuestions()))

	rec := doRequest(t, handler, http.MethodPost, "/sync", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("sync status = %d, body %s", rec.Code, rec.Body.String())
	}
	var synced syncResponse
	decodeBody(t, rec, &synced)
	if synced.QuestionCount != 2 {
		t.Fatalf("question_count = %d, want 2", synced.QuestionCount)
	}

	rec = doRequest(t, handler, http.MethodGet, "/questions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("questions status = %d", rec.Code)
	}
	var listed questionsResponse
	decodeBody(t, rec, &listed)
	if listed.QuestionCount != 2 || listed.SyncedAt == nil {
		t.Fatalf("unexpected questions response: %+v", listed)
	}
	if len(listed.Columns) == 0 || listed.Columns[0] != quiz.FieldID {
		t.Fatalf("columns = %v, want id first", listed.Columns)
	}
}

func TestSyncFetchFailureIsBadGateway(t *testing.T) {
	handler, _ := newTestHandler(t, func(context.Context) (string, []quiz.Question, error) {
		return "", nil, errors.New("dial tcp: refused")
	})

	rec := doRequest(t, handler, http.MethodPost, "/sync", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
}

func TestPutSettingsValidation(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	for _, tc := range []struct {
		name string
		body string
		want int
	}{
		{name: "missing field", body: `{"duration_minutes":5}`, want: http.StatusBadRequest},
		{name: "zero duration", body: `{"duration_minutes":0,"question_count":3}`, want: http.StatusBadRequest},
		{name: "unknown field", body: `{"duration_minutes":5,"question_count":3,"x":1}`, want: http.StatusBadRequest},
		{name: "valid", body: `{"duration_minutes":5,"question_count":3}`, want: http.StatusOK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodPut, "/settings", tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}

	rec := doRequest(t, handler, http.MethodGet, "/settings", "")
	var settings quiz.Settings
	decodeBody(t, rec, &settings)
	if settings.DurationMinutes != 5 || settings.QuestionCount != 3 {
		t.Fatalf("settings = %+v, want 5 minutes and 3 questions", settings)
	}
}

func startSession(t *testing.T, handler http.Handler) sessionResponse {
	t.Helper()
	if rec := doRequest(t, handler, http.MethodPost, "/sync", ""); rec.Code != http.StatusOK {
		t.Fatalf("sync status = %d", rec.Code)
	}
	if rec := doRequest(t, handler, http.MethodPut, "/settings", `{"duration_minutes":5,"question_count":2}`); rec.Code != http.StatusOK {
		t.Fatalf("settings status = %d", rec.Code)
	}
	rec := doRequest(t, handler, http.MethodPost, "/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body.String())
	}
	var session sessionResponse
	decodeBody(t, rec, &session)
	return session
}

func letterFor(t *testing.T, question sessionQuestionResponse, text string) string {
	t.Helper()
	for _, option := range question.Options {
		if option.Text == text {
			return option.Letter
		}
	}
	t.Fatalf("option %q not offered for question %s", text, question.QuestionID)
	return ""
}

func TestSessionLifecycle(t *testing.T) {
	handler, _ := newTestHandler(t, staticFetcher(sampleQuestions()))
	session := startSession(t, handler)

	if session.Status != sessionActive || len(session.Questions) != 2 {
		t.Fatalf("unexpected session: %+v", session)
	}
	if session.RemainingClock != "05:00" {
		t.Fatalf("remaining_clock = %q, want 05:00", session.RemainingClock)
	}

	answers := map[string]string{"1": "4", "2": "Green"}
	for _, question := range session.Questions {
		letter := letterFor(t, question, answers[question.QuestionID])
		target := "/sessions/" + session.SessionID + "/answers/" + string(rune('0'+question.Index))
		rec := doRequest(t, handler, http.MethodPut, target, `{"letter":"`+strings.ToLower(letter)+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("answer status = %d, body %s", rec.Code, rec.Body.String())
		}
	}

	rec := doRequest(t, handler, http.MethodGet, "/sessions/"+session.SessionID, "")
	var current sessionResponse
	decodeBody(t, rec, &current)
	if current.AnsweredCount != 2 {
		t.Fatalf("answered_count = %d, want 2", current.AnsweredCount)
	}

	rec = doRequest(t, handler, http.MethodPost, "/sessions/"+session.SessionID+"/submit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body.String())
	}
	var summary quiz.ResultSummary
	decodeBody(t, rec, &summary)
	if summary.Status != quiz.StatusCompleted || summary.Score != 1 || summary.TotalQuestionsAsked != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	rec = doRequest(t, handler, http.MethodPut, "/sessions/"+session.SessionID+"/answers/0", `{"clear":true}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("answer after submit status = %d, want %d", rec.Code, http.StatusConflict)
	}

	rec = doRequest(t, handler, http.MethodGet, "/results/latest", "")
	var latest quiz.ResultSummary
	decodeBody(t, rec, &latest)
	if latest.ResultID != summary.ResultID {
		t.Fatalf("latest result = %q, want %q", latest.ResultID, summary.ResultID)
	}

	rec = doRequest(t, handler, http.MethodGet, "/results/"+summary.ResultID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get result status = %d", rec.Code)
	}

	rec = doRequest(t, handler, http.MethodGet, "/results?limit=5", "")
	var listed resultsResponse
	decodeBody(t, rec, &listed)
	if len(listed.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(listed.Results))
	}

	rec = doRequest(t, handler, http.MethodGet, "/results/"+summary.ResultID+"/report.pdf", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("Content-Type = %q, want application/pdf", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("report body does not look like a PDF")
	}
}

func TestSelectAnswerRejectsBadInput(t *testing.T) {
	handler, _ := newTestHandler(t, staticFetcher(sampleQuestions()))
	session := startSession(t, handler)
	base := "/sessions/" + session.SessionID + "/answers/"

	for _, tc := range []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{name: "letter out of range", target: base + "0", body: `{"letter":"Z"}`, want: http.StatusBadRequest},
		{name: "unknown value", target: base + "0", body: `{"answer":"42"}`, want: http.StatusBadRequest},
		{name: "index out of range", target: base + "9", body: `{"letter":"A"}`, want: http.StatusBadRequest},
		{name: "bad index", target: base + "x", body: `{"letter":"A"}`, want: http.StatusBadRequest},
		{name: "empty body", target: base + "0", body: `{}`, want: http.StatusBadRequest},
		{name: "unknown session", target: "/sessions/nope/answers/0", body: `{"letter":"A"}`, want: http.StatusNotFound},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodPut, tc.target, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestAbandonSession(t *testing.T) {
	handler, _ := newTestHandler(t, staticFetcher(sampleQuestions()))
	session := startSession(t, handler)

	rec := doRequest(t, handler, http.MethodDelete, "/sessions/"+session.SessionID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("abandon status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = doRequest(t, handler, http.MethodGet, "/sessions/"+session.SessionID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after abandon status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = doRequest(t, handler, http.MethodGet, "/results/latest", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("latest after abandon status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
