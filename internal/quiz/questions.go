package quiz

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Column names of the structured sheet rows kept in the cache.
const (
	FieldID           = "id"
	FieldQuestionText = "questionText"
	FieldAnswer       = "Answer"
	FieldType         = "Type"
	FieldDistraction1 = "Distraction_1"
	FieldDistraction2 = "Distraction_2"
	FieldDistraction3 = "Distraction_3"
	FieldClass        = "Class"
)

const (
	TypeFixed = "fixed"
	TypeClass = "class"
)

// Question is one row of the synced sheet. Columns the quiz does not know about
// are kept in Extra so a re-encoded row round-trips through the cache unchanged.
type Question struct {
	ID           string
	QuestionText string
	Answer       string
	Type         string
	Distraction1 string
	Distraction2 string
	Distraction3 string
	Class        string
	Extra        map[string]string
}

// Option is an option paired with the letter shown to terminal users.
type Option struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// HasAnswer reports whether the question carries a usable correct answer.
func (q Question) HasAnswer() bool {
	return strings.TrimSpace(q.Answer) != ""
}

// CorrectAnswer is the value an answer is compared against. Questions with a
// blank Answer compare against the placeholder shown in their option list.
func (q Question) CorrectAnswer() string {
	if !q.HasAnswer() {
		return PlaceholderMissingAnswer
	}
	return q.Answer
}

func (q Question) IsType(kind string) bool {
	return strings.EqualFold(strings.TrimSpace(q.Type), kind)
}

func (q Question) fields() map[string]string {
	fields := make(map[string]string, len(q.Extra)+8)
	for key, value := range q.Extra {
		fields[key] = value
	}
	fields[FieldID] = q.ID
	fields[FieldQuestionText] = q.QuestionText
	fields[FieldAnswer] = q.Answer
	fields[FieldType] = q.Type
	fields[FieldDistraction1] = q.Distraction1
	fields[FieldDistraction2] = q.Distraction2
	fields[FieldDistraction3] = q.Distraction3
	fields[FieldClass] = q.Class
	return fields
}

// QuestionFromFields builds a Question from a flat column map.
func QuestionFromFields(fields map[string]string) Question {
	q := Question{}
	for key, value := range fields {
		switch key {
		case FieldID:
			q.ID = value
		case FieldQuestionText:
			q.QuestionText = value
		case FieldAnswer:
			q.Answer = value
		case FieldType:
			q.Type = value
		case FieldDistraction1:
			q.Distraction1 = value
		case FieldDistraction2:
			q.Distraction2 = value
		case FieldDistraction3:
			q.Distraction3 = value
		case FieldClass:
			q.Class = value
		default:
			if q.Extra == nil {
				q.Extra = make(map[string]string)
			}
			q.Extra[key] = value
		}
	}
	return q
}

func (q Question) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.fields())
}

// UnmarshalJSON accepts any flat JSON object. Numbers and booleans are kept in
// their string form; null becomes the empty string.
func (q *Question) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		*q = Question{}
		return nil
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		text, err := stringForm(value)
		if err != nil {
			return err
		}
		fields[key] = text
	}
	*q = QuestionFromFields(fields)
	return nil
}

func stringForm(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

// Columns returns the union of column names across questions, known columns first.
func Columns(questions []Question) []string {
	known := []string{
		FieldID, FieldQuestionText, FieldAnswer, FieldType,
		FieldDistraction1, FieldDistraction2, FieldDistraction3, FieldClass,
	}

	seen := make(map[string]struct{})
	var extra []string
	for _, question := range questions {
		for key := range question.Extra {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(known, extra...)
}

// Field returns the value of a column by name.
func (q Question) Field(name string) string {
	return q.fields()[name]
}

// LetteredOptions pairs options with A, B, C... in display order.
func LetteredOptions(options []string) []Option {
	lettered := make([]Option, len(options))
	for idx, text := range options {
		lettered[idx] = Option{
			Letter: string(rune('A' + idx)),
			Text:   text,
		}
	}
	return lettered
}

// OptionForLetter resolves a typed letter to the option text.
func OptionForLetter(options []string, answer string) (string, bool) {
	letter := NormalizeLetter(answer)
	if letter == "" {
		return "", false
	}
	idx := int(letter[0] - 'A')
	if idx < 0 || idx >= len(options) {
		return "", false
	}
	return options[idx], true
}

func NormalizeLetter(answer string) string {
	letter := strings.ToUpper(strings.TrimSpace(answer))
	if len(letter) != 1 {
		return ""
	}
	return letter
}
