package sheet

import (
	"errors"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrNoTable      = errors.New("could not find the data table in the fetched HTML")
	ErrNoHeaderRow  = errors.New("could not find header row in the table")
	ErrEmptyHeaders = errors.New("headers are empty; check table structure")
)

// ParsePubHTML extracts rows from a "publish to web" HTML export. The first
// body row holds the headers.
func ParsePubHTML(r io.Reader) ([]Row, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	table := findDataTable(doc)
	if table == nil {
		return nil, ErrNoTable
	}

	bodyRows := table.Find("tbody tr")
	if bodyRows.Length() == 0 {
		return nil, ErrNoHeaderRow
	}

	var headers []string
	bodyRows.First().Find("td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(cell.Text()))
	})
	if len(headers) == 0 {
		return nil, ErrEmptyHeaders
	}

	rows := make([]Row, 0, bodyRows.Length()-1)
	bodyRows.Slice(1, bodyRows.Length()).Each(func(_ int, tr *goquery.Selection) {
		var values []string
		tr.Find("td").Each(func(_ int, cell *goquery.Selection) {
			values = append(values, cell.Text())
		})
		if blankRecord(values) {
			return
		}
		rows = append(rows, makeRow(headers, values))
	})
	return rows, nil
}

func findDataTable(doc *goquery.Document) *goquery.Selection {
	if viewport := doc.Find("div#sheets-viewport table").First(); viewport.Length() > 0 {
		return viewport
	}

	tables := doc.Find("table")
	if tables.Length() == 0 {
		return nil
	}

	var match *goquery.Selection
	tables.EachWithBreak(func(_ int, table *goquery.Selection) bool {
		cells := table.Find("tbody tr").First().Find("td")
		if cells.Length() > 3 && strings.EqualFold(strings.TrimSpace(cells.First().Text()), "S.N") {
			match = table
			return false
		}
		return true
	})
	if match != nil {
		return match
	}
	return tables.First()
}
