// Package output provides utilities for formatting and displaying record tables.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Table is a header and rows of cell text.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, table Table) error {
	p := message.NewPrinter(language.English)

	widths := make([]int, len(table.Header))
	for i, heading := range table.Header {
		widths[i] = utf8.RuneCountInString(heading)
	}
	for _, row := range table.Rows {
		for i := range widths {
			if i < len(row) {
				if n := utf8.RuneCountInString(row[i]); n > widths[i] {
					widths[i] = n
				}
			}
		}
	}

	if _, err := p.Fprintf(w, "--- %s (%d records) ---\n", table.Title, len(table.Rows)); err != nil {
		return err
	}
	if err := writeAligned(w, table.Header, widths); err != nil {
		return err
	}
	underline := make([]string, len(widths))
	for i, width := range widths {
		underline[i] = strings.Repeat("_", width)
	}
	if err := writeAligned(w, underline, widths); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := writeAligned(w, row, widths); err != nil {
			return err
		}
	}
	return nil
}

func writeAligned(w io.Writer, cells []string, widths []int) error {
	padded := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		padded[i] = cell + strings.Repeat(" ", width-utf8.RuneCountInString(cell))
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(padded, " | "), " "))
	return err
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(w io.Writer, table Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return err
	}
	return writer.Error()
}
