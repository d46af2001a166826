package sheet

import (
	"strconv"
	"strings"

	"sheet-quiz/internal/quiz"
)

// headerAliases renames the two display headers of the published sheet.
// Every other column keeps its header verbatim.
var headerAliases = map[string]string{
	"S.N":      quiz.FieldID,
	"Question": quiz.FieldQuestionText,
}

func canonicalHeader(header string) string {
	if field, ok := headerAliases[strings.TrimSpace(header)]; ok {
		return field
	}
	return header
}

// ToQuestions maps rows onto questions. A column already named after a field
// wins over its alias. Rows without an id get their 1-based position.
func ToQuestions(rows []Row) []quiz.Question {
	questions := make([]quiz.Question, 0, len(rows))
	for idx, row := range rows {
		fields := make(map[string]string, len(row))
		for header, value := range row {
			field := canonicalHeader(header)
			if _, taken := fields[field]; taken && header != field {
				continue
			}
			fields[field] = value
		}
		if strings.TrimSpace(fields[quiz.FieldID]) == "" {
			fields[quiz.FieldID] = strconv.Itoa(idx + 1)
		}
		questions = append(questions, quiz.QuestionFromFields(fields))
	}
	return questions
}
