package sheet

import (
	"context"
	"fmt"
	"strings"

	"sheet-quiz/internal/quiz"
)

const (
	FormatCSV     = "csv"
	FormatPubHTML = "pubhtml"
)

// Importer fetches one published sheet and converts it to questions.
type Importer struct {
	Client *Client
	URL    string
	Format string
}

// Fetch downloads and converts the sheet. It matches quiz.SheetFetcher.
func (i Importer) Fetch(ctx context.Context) (string, []quiz.Question, error) {
	client := i.Client
	if client == nil {
		client = NewClient(nil)
	}

	raw, err := client.Fetch(ctx, i.URL)
	if err != nil {
		return "", nil, err
	}

	var rows []Row
	switch strings.ToLower(strings.TrimSpace(i.Format)) {
	case "", FormatCSV:
		rows, err = ParseCSV(raw)
	case FormatPubHTML:
		rows, err = ParsePubHTML(strings.NewReader(raw))
	default:
		return "", nil, fmt.Errorf("unknown sheet format %q", i.Format)
	}
	if err != nil {
		return "", nil, fmt.Errorf("parse %s export: %w", i.formatName(), err)
	}

	return raw, ToQuestions(rows), nil
}

func (i Importer) formatName() string {
	if strings.TrimSpace(i.Format) == "" {
		return FormatCSV
	}
	return i.Format
}

// ValidFormat reports whether format names a supported export.
func ValidFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV, FormatPubHTML:
		return true
	}
	return false
}
