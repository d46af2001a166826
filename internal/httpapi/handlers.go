package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sheet-quiz/internal/quiz"
	"sheet-quiz/internal/report"
)

const defaultListLimit = 10

func (a *API) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) HandleSync(w http.ResponseWriter, r *http.Request) {
	info, err := a.service.Sync(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, syncResponse{
		QuestionCount: info.QuestionCount,
		SyncedAt:      info.SyncedAt,
	})
}

func (a *API) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	questions, info, err := a.service.CachedQuestions(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := questionsResponse{
		QuestionCount: len(questions),
		Columns:       quiz.Columns(questions),
		Questions:     questions,
	}
	if !info.SyncedAt.IsZero() {
		syncedAt := info.SyncedAt
		response.SyncedAt = &syncedAt
	}
	writeJSON(w, http.StatusOK, response)
}

func (a *API) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := a.service.GetSettings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (a *API) HandlePutSettings(w http.ResponseWriter, r *http.Request) {
	var request settingsRequest
	if err := decodeJSON(w, r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if request.DurationMinutes == nil || request.QuestionCount == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "duration_minutes and question_count are required"})
		return
	}

	settings := quiz.Settings{
		DurationMinutes: *request.DurationMinutes,
		QuestionCount:   *request.QuestionCount,
	}
	if err := a.service.UpdateSettings(r.Context(), settings); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (a *API) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	session, err := a.service.StartSession(r.Context())
	if err != nil {
		if quiz.IsSetupError(err) {
			a.logger.Warn("quiz setup incomplete", zap.Error(err))
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (a *API) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := a.service.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (a *API) HandleAbandonSession(w http.ResponseWriter, r *http.Request) {
	if err := a.service.Abandon(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) HandleSelectAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	index, err := parseIndex(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var request answerRequest
	if err := decodeJSON(w, r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	session, err := a.service.GetSession(sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	switch {
	case request.Clear:
		err = a.service.ClearAnswer(sessionID, index)
	case strings.TrimSpace(request.Letter) != "":
		if index >= len(session.Questions) {
			err = quiz.ErrQuestionOutOfRange
			break
		}
		value, ok := quiz.OptionForLetter(session.Questions[index].Options, request.Letter)
		if !ok {
			err = quiz.ErrInvalidAnswer
			break
		}
		err = a.service.SelectAnswer(sessionID, index, value)
	case request.Answer != nil:
		err = a.service.SelectAnswer(sessionID, index, *request.Answer)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "one of answer, letter or clear is required"})
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (a *API) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	summary, err := a.service.Submit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if summary.Status != "" {
			a.logger.Error("result not saved", zap.String("result_id", summary.ResultID), zap.Error(err))
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) HandleListResults(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultListLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	results, err := a.service.ListResults(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse{Results: results})
}

func (a *API) HandleLatestResult(w http.ResponseWriter, r *http.Request) {
	summary, err := a.service.LatestResult(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) HandleGetResult(w http.ResponseWriter, r *http.Request) {
	summary, err := a.service.GetResult(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) HandleResultReport(w http.ResponseWriter, r *http.Request) {
	summary, err := a.service.GetResult(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := report.Bytes(summary)
	if err != nil {
		a.logger.Error("rendering report failed", zap.String("result_id", summary.ResultID), zap.Error(err))
		writeServiceError(w, errors.New("report rendering failed"))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="quiz-result-`+summary.ResultID+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
