package userclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sheet-quiz/internal/quiz"
)

var ErrServiceUnavailable = errors.New("quiz service unavailable")

type APIError struct {
	StatusCode int
	Message    string
	SetupPath  string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// NeedsSetup reports whether the service pointed the client at quiz setup.
func (e *APIError) NeedsSetup() bool {
	return e.SetupPath != ""
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

type syncResponse struct {
	QuestionCount int       `json:"question_count"`
	SyncedAt      time.Time `json:"synced_at"`
}

type sessionQuestion struct {
	Index        int           `json:"index"`
	QuestionID   string        `json:"question_id"`
	QuestionText string        `json:"question_text"`
	Options      []quiz.Option `json:"options"`
	Selected     *string       `json:"selected,omitempty"`
}

type sessionResponse struct {
	SessionID        string              `json:"session_id"`
	ResultID         string              `json:"result_id"`
	Status           string              `json:"status"`
	StartedAt        time.Time           `json:"started_at"`
	Deadline         time.Time           `json:"deadline"`
	RemainingSeconds int                 `json:"remaining_seconds"`
	AnsweredCount    int                 `json:"answered_count"`
	Questions        []sessionQuestion   `json:"questions"`
	Result           *quiz.ResultSummary `json:"result,omitempty"`
}

type answerRequest struct {
	Letter string `json:"letter"`
}

type resultsResponse struct {
	Results []quiz.ResultSummary `json:"results"`
}

type errorResponse struct {
	Error     string `json:"error"`
	SetupPath string `json:"setup_path,omitempty"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultServer
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *HTTPClient) Sync(ctx context.Context) (syncResponse, error) {
	var payload syncResponse
	if err := c.doJSON(ctx, http.MethodPost, "/sync", nil, &payload); err != nil {
		return syncResponse{}, err
	}
	return payload, nil
}

func (c *HTTPClient) GetSettings(ctx context.Context) (quiz.Settings, error) {
	var payload quiz.Settings
	if err := c.doJSON(ctx, http.MethodGet, "/settings", nil, &payload); err != nil {
		return quiz.Settings{}, err
	}
	return payload, nil
}

func (c *HTTPClient) UpdateSettings(ctx context.Context, settings quiz.Settings) error {
	return c.doJSON(ctx, http.MethodPut, "/settings", settings, nil)
}

func (c *HTTPClient) StartSession(ctx context.Context) (sessionResponse, error) {
	var payload sessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/sessions", nil, &payload); err != nil {
		return sessionResponse{}, err
	}
	return payload, nil
}

func (c *HTTPClient) SelectLetter(ctx context.Context, sessionID string, index int, letter string) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("session_id is required")
	}
	path := "/sessions/" + url.PathEscape(sessionID) + "/answers/" + strconv.Itoa(index)
	return c.doJSON(ctx, http.MethodPut, path, answerRequest{Letter: letter}, nil)
}

func (c *HTTPClient) Submit(ctx context.Context, sessionID string) (quiz.ResultSummary, error) {
	var payload quiz.ResultSummary
	path := "/sessions/" + url.PathEscape(sessionID) + "/submit"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &payload); err != nil {
		return quiz.ResultSummary{}, err
	}
	return payload, nil
}

func (c *HTTPClient) Abandon(ctx context.Context, sessionID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(sessionID), nil, nil)
}

func (c *HTTPClient) ListResults(ctx context.Context, limit int) ([]quiz.ResultSummary, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var payload resultsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/results?"+query.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// GetResult fetches a stored result. The id "latest" returns the most recent one.
func (c *HTTPClient) GetResult(ctx context.Context, resultID string) (quiz.ResultSummary, error) {
	if strings.TrimSpace(resultID) == "" {
		return quiz.ResultSummary{}, errors.New("result_id is required")
	}

	var payload quiz.ResultSummary
	if err := c.doJSON(ctx, http.MethodGet, "/results/"+url.PathEscape(resultID), nil, &payload); err != nil {
		return quiz.ResultSummary{}, err
	}
	return payload, nil
}

// DownloadReport copies the PDF report for resultID into w.
func (c *HTTPClient) DownloadReport(ctx context.Context, resultID string, w io.Writer) error {
	response, err := c.do(ctx, http.MethodGet, "/results/"+url.PathEscape(resultID)+"/report.pdf", nil)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	_, err = io.Copy(w, response.Body)
	return err
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	response, err := c.do(ctx, method, path, requestBody)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, requestBody any) (*http.Response, error) {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		defer response.Body.Close()
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
			apiErr.SetupPath = payload.SetupPath
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return nil, &apiErr
	}
	return response, nil
}
