package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"sheet-quiz/internal/quiz"
)

const (
	markCorrect = "Correct"
	markWrong   = "Wrong"
	markSkipped = "Skipped"
)

// Render writes a one-result A4 report to w.
func Render(w io.Writer, summary quiz.ResultSummary) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Quiz result "+summary.ResultID, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Quiz Result", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8,
		fmt.Sprintf("Status: %s | Score: %d/%d (%.0f%%)",
			summary.Status, summary.Score, summary.TotalQuestionsAsked, Percent(summary.Score, summary.TotalQuestionsAsked)),
		"", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8,
		fmt.Sprintf("Time taken: %s of %s", quiz.FormatClock(summary.TimeTaken), quiz.FormatClock(summary.MaxTime)),
		"", 1, "C", false, 0, "")
	if !summary.FinishedAt.IsZero() {
		pdf.CellFormat(0, 8, "Finished: "+summary.FinishedAt.Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(10, 7, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(80, 7, "Question", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Your answer", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Correct answer", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Mark", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for idx, record := range summary.AnsweredQuestionsDetail {
		userAnswer := "-"
		if record.UserAnswer != nil {
			userAnswer = *record.UserAnswer
		}
		pdf.CellFormat(10, 7, fmt.Sprintf("%d", idx+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(80, 7, tr(clip(record.QuestionText, 48)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, tr(clip(userAnswer, 24)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, tr(clip(record.CorrectAnswer, 24)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, Mark(record), "1", 1, "C", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 6, "Result ID: "+summary.ResultID, "", 1, "C", false, 0, "")

	return pdf.Output(w)
}

// Bytes renders the report into memory.
func Bytes(summary quiz.ResultSummary) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, summary); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Mark(record quiz.AnswerRecord) string {
	switch {
	case record.Skipped():
		return markSkipped
	case record.IsCorrect:
		return markCorrect
	default:
		return markWrong
	}
}

func Percent(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(score) * 100 / float64(total)
}

func clip(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}
