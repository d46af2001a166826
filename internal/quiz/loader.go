package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Settings are the quiz parameters picked on the setup screen.
type Settings struct {
	DurationMinutes int `json:"duration_minutes"`
	QuestionCount   int `json:"question_count"`
}

func (s Settings) Validate() error {
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("%w: time must be a positive number of minutes, got %d", ErrInvalidSettings, s.DurationMinutes)
	}
	if s.QuestionCount < 0 {
		return fmt.Errorf("%w: number of questions cannot be negative, got %d", ErrInvalidSettings, s.QuestionCount)
	}
	return nil
}

// Inputs is everything a session needs from the cache.
type Inputs struct {
	Settings  Settings
	Questions []Question
}

// LoadInputs reads settings and the question pool from the cache. Every
// absent key is reported in a single MissingDataError.
func LoadInputs(ctx context.Context, kv KeyValueStore) (Inputs, error) {
	values := make(map[string]string, 3)
	var missing []string
	for _, item := range []struct{ key, label string }{
		{KeyQuizTime, KeyQuizTime},
		{KeyQuizQuestions, KeyQuizQuestions},
		{KeyQuestions, "question data (" + KeyQuestions + ")"},
	} {
		value, found, err := kv.Get(ctx, item.key)
		if err != nil {
			return Inputs{}, err
		}
		if !found || value == "" {
			missing = append(missing, item.label)
			continue
		}
		values[item.key] = value
	}
	if len(missing) > 0 {
		return Inputs{}, &MissingDataError{Keys: missing}
	}

	settings, err := ParseSettings(values[KeyQuizTime], values[KeyQuizQuestions])
	if err != nil {
		return Inputs{}, err
	}

	questions, err := ParseQuestions(values[KeyQuestions])
	if err != nil {
		return Inputs{}, err
	}
	if len(questions) == 0 && settings.QuestionCount > 0 {
		return Inputs{}, malformed("question data is an empty array, but %d questions were requested", settings.QuestionCount)
	}

	return Inputs{Settings: settings, Questions: questions}, nil
}

// ParseSettings parses the two cached integers.
func ParseSettings(quizTime, quizQuestions string) (Settings, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(quizTime))
	if err != nil {
		return Settings{}, malformed("invalid time %q", quizTime)
	}
	count, err := strconv.Atoi(strings.TrimSpace(quizQuestions))
	if err != nil {
		return Settings{}, malformed("invalid number of questions %q", quizQuestions)
	}

	settings := Settings{DurationMinutes: minutes, QuestionCount: count}
	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrMalformedData, err)
	}
	return settings, nil
}

// ParseQuestions decodes the cached question array.
func ParseQuestions(data string) ([]Question, error) {
	trimmed := strings.TrimSpace(data)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, malformed("parsed question data is not an array")
	}

	var questions []Question
	if err := json.Unmarshal([]byte(trimmed), &questions); err != nil {
		return nil, malformed("error parsing question data: %v", err)
	}
	return questions, nil
}

// EncodeQuestions is the inverse of ParseQuestions.
func EncodeQuestions(questions []Question) (string, error) {
	if questions == nil {
		questions = []Question{}
	}
	encoded, err := json.Marshal(questions)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
