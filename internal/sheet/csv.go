package sheet

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// Row is one sheet row keyed by header. Every header is present.
type Row map[string]string

// ParseCSV converts a CSV export into rows. Headers and values are trimmed,
// blank lines are skipped and short rows are filled with empty strings.
func ParseCSV(text string) ([]Row, error) {
	if strings.TrimSpace(text) == "" {
		return []Row{}, nil
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []Row{}, nil
		}
		return nil, err
	}
	headers := make([]string, len(header))
	for idx, name := range header {
		headers[idx] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}

	rows := make([]Row, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if blankRecord(record) {
			continue
		}
		rows = append(rows, makeRow(headers, record))
	}
	return rows, nil
}

func blankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func makeRow(headers, values []string) Row {
	row := make(Row, len(headers))
	for idx, header := range headers {
		value := ""
		if idx < len(values) {
			value = strings.TrimSpace(values[idx])
		}
		row[header] = value
	}
	return row
}
