package quiz

import "strings"

const (
	PlaceholderMissingAnswer = "Error: Correct answer missing"
	PlaceholderNotAvailable  = "N/A"

	MaxOptions     = 4
	DefaultMinimum = 2
)

var genericPlaceholders = []string{"Option A", "Option B", "Option C", "Option D"}

// OptionGenerator builds the option list for one question. Minimum is the
// number of options padding tries to reach with generic placeholders; values
// outside [2, 4] fall back to 2.
type OptionGenerator struct {
	Rand    Rand
	Minimum int
}

// GenerateOptions is the package-level form with the default minimum of two.
func GenerateOptions(r Rand, question Question, pool []Question) []string {
	return OptionGenerator{Rand: r}.Generate(question, pool)
}

// Generate returns between Minimum and 4 distinct options in random order.
// Exactly one of them is the question's correct answer, or the missing-answer
// placeholder when the question has none.
func (g OptionGenerator) Generate(question Question, pool []Question) []string {
	r := g.Rand
	if r == nil {
		r = DefaultRand
	}

	options := make([]string, 0, MaxOptions)
	options = append(options, question.CorrectAnswer())

	switch {
	case question.IsType(TypeFixed):
		for _, distraction := range []string{question.Distraction1, question.Distraction2, question.Distraction3} {
			if strings.TrimSpace(distraction) != "" {
				options = append(options, distraction)
			}
		}
	case question.IsType(TypeClass) && strings.TrimSpace(question.Class) != "":
		candidates := classDistractors(question, pool)
		Shuffle(r, candidates)
		for _, candidate := range candidates {
			if len(options) >= MaxOptions {
				break
			}
			if !contains(options, candidate) {
				options = append(options, candidate)
			}
		}
	}

	options = dedupe(options)
	Shuffle(r, options)
	if len(options) > MaxOptions {
		options = options[:MaxOptions]
	}

	return pad(options, g.minimum())
}

func (g OptionGenerator) minimum() int {
	if g.Minimum < DefaultMinimum || g.Minimum > MaxOptions {
		return DefaultMinimum
	}
	return g.Minimum
}

// classDistractors collects answers of other questions in the same class.
func classDistractors(question Question, pool []Question) []string {
	class := strings.TrimSpace(question.Class)
	candidates := make([]string, 0)
	for _, other := range pool {
		if other.ID == question.ID {
			continue
		}
		if strings.TrimSpace(other.Class) != class || !other.HasAnswer() {
			continue
		}
		candidates = append(candidates, other.Answer)
	}
	return candidates
}

func dedupe(options []string) []string {
	seen := make(map[string]struct{}, len(options))
	out := make([]string, 0, len(options))
	for _, option := range options {
		if option == "" {
			option = PlaceholderNotAvailable
		}
		if _, ok := seen[option]; ok {
			continue
		}
		seen[option] = struct{}{}
		out = append(out, option)
	}
	return out
}

func pad(options []string, minimum int) []string {
	for _, placeholder := range genericPlaceholders {
		if len(options) >= minimum {
			break
		}
		if !contains(options, placeholder) {
			options = append(options, placeholder)
		}
	}
	return options
}

func contains(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}
