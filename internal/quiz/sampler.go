package quiz

// SelectRandomQuestions returns min(count, len(questions)) distinct questions in
// random order. The input slice is left untouched. A count of zero or less
// always yields an empty selection; callers that want "all questions" resolve
// that before calling (see ZeroCountPolicy).
func SelectRandomQuestions(r Rand, questions []Question, count int) []Question {
	if len(questions) == 0 || count <= 0 {
		return []Question{}
	}

	actualCount := min(count, len(questions))

	shuffled := make([]Question, len(questions))
	copy(shuffled, questions)
	Shuffle(r, shuffled)

	return shuffled[:actualCount:actualCount]
}
