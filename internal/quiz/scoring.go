package quiz

// AnswerRecord is the write-once outcome of one question in a finished attempt.
// UserAnswer is nil when the question was left unanswered.
type AnswerRecord struct {
	QuestionID    string   `json:"questionId"`
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	UserAnswer    *string  `json:"userAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
}

func (r AnswerRecord) Skipped() bool {
	return r.UserAnswer == nil
}

func BuildAnswerRecord(question Question, options []string, userAnswer *string) AnswerRecord {
	correct := question.CorrectAnswer()

	var answer *string
	if userAnswer != nil {
		value := *userAnswer
		answer = &value
	}

	return AnswerRecord{
		QuestionID:    question.ID,
		QuestionText:  question.QuestionText,
		Options:       append([]string(nil), options...),
		CorrectAnswer: correct,
		UserAnswer:    answer,
		IsCorrect:     answer != nil && *answer == correct,
	}
}

func Score(records []AnswerRecord) int {
	score := 0
	for _, record := range records {
		if record.IsCorrect {
			score++
		}
	}
	return score
}
