package httpapi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"sheet-quiz/internal/quiz"
)

// setupPath is where clients send users when the cache is not ready.
const setupPath = "/settings"

const sessionActive = "active"

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case quiz.IsSetupError(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), SetupPath: setupPath})
	case errors.Is(err, quiz.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
	case errors.Is(err, quiz.ErrResultNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "result not found"})
	case errors.Is(err, quiz.ErrSessionClosed):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "session already finished"})
	case errors.Is(err, quiz.ErrInvalidSettings),
		errors.Is(err, quiz.ErrInvalidAnswer),
		errors.Is(err, quiz.ErrQuestionOutOfRange):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, quiz.ErrSheetFetch):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "failed to fetch spreadsheet"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

func toSessionResponse(session *quiz.Session) sessionResponse {
	response := sessionResponse{
		SessionID:     session.ID,
		ResultID:      session.ResultID,
		Status:        sessionActive,
		StartedAt:     session.StartedAt,
		Deadline:      session.Deadline(),
		AnsweredCount: session.AnsweredCount(),
		Questions:     make([]sessionQuestionResponse, 0, len(session.Questions)),
	}

	remaining := int(math.Ceil(session.Remaining().Seconds()))
	if summary, ok := session.Summary(); ok {
		response.Status = summary.Status
		response.Result = &summary
		remaining = 0
	}
	response.RemainingSeconds = remaining
	response.RemainingClock = quiz.FormatClock(remaining)

	for idx, item := range session.Questions {
		question := sessionQuestionResponse{
			Index:        idx,
			QuestionID:   item.Question.ID,
			QuestionText: item.Question.QuestionText,
			Options:      quiz.LetteredOptions(item.Options),
		}
		if value, ok := session.Answer(idx); ok {
			selected := value
			question.Selected = &selected
		}
		response.Questions = append(response.Questions, question)
	}
	return response
}

func parseLimit(r *http.Request, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get("limit"))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}
	// <=0 means every stored result.
	return parsed, nil
}

func parseIndex(value string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 0 {
		return 0, errors.New("question index must be a non-negative integer")
	}
	return parsed, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func writeNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
