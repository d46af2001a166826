package terminal

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"sheet-quiz/internal/quiz"
	"sheet-quiz/internal/report"
)

const (
	markCorrect = "✅"
	markWrong   = "❌"
)

// ResultsView prints a finished quiz.
type ResultsView struct {
	NoColor bool
}

func (v ResultsView) Render(out io.Writer, summary quiz.ResultSummary) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, v.style("Quiz Results", lipgloss.Color("39"), true))
	fmt.Fprintf(out, "Status: %s\n", v.style(summary.Status, statusColor(summary.Status), false))
	fmt.Fprintf(out, "Score: %d/%d (%.0f%%)\n", summary.Score, summary.TotalQuestionsAsked, report.Percent(summary.Score, summary.TotalQuestionsAsked))
	fmt.Fprintf(out, "Time: %s / %s\n", quiz.FormatClock(summary.TimeTaken), quiz.FormatClock(summary.MaxTime))

	for idx, record := range summary.AnsweredQuestionsDetail {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Q%d: %s\n", idx+1, record.QuestionText)
		for _, option := range quiz.LetteredOptions(record.Options) {
			line := fmt.Sprintf("  %s. %s", option.Letter, option.Text)
			switch {
			case option.Text == record.CorrectAnswer:
				line = v.style(line+" "+markCorrect, lipgloss.Color("42"), false)
			case record.UserAnswer != nil && *record.UserAnswer == option.Text:
				line = v.style(line+" "+markWrong, lipgloss.Color("196"), false)
			}
			fmt.Fprintln(out, line)
		}
		if record.Skipped() {
			fmt.Fprintln(out, v.style("  (skipped)", lipgloss.Color("244"), false))
		}
	}
}

// RenderList prints one line per stored result.
func (v ResultsView) RenderList(out io.Writer, results []quiz.ResultSummary) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No results yet.")
		return
	}
	for idx, summary := range results {
		fmt.Fprintf(out, "%d. %s %d/%d %s in %s (%s)\n",
			idx+1,
			summary.ResultID,
			summary.Score,
			summary.TotalQuestionsAsked,
			v.style(summary.Status, statusColor(summary.Status), false),
			quiz.FormatClock(summary.TimeTaken),
			summary.FinishedAt.Local().Format("2006-01-02 15:04"),
		)
	}
}

func (v ResultsView) style(text string, color lipgloss.Color, bold bool) string {
	if v.NoColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Bold(bold).Render(text)
}

func statusColor(status string) lipgloss.Color {
	switch status {
	case quiz.StatusCompleted:
		return lipgloss.Color("42")
	case quiz.StatusTimeOut:
		return lipgloss.Color("196")
	default:
		return lipgloss.Color("220")
	}
}
