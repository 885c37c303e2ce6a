package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// PrintTable writes left aligned columns. Footers are optional.
func PrintTable(w io.Writer, headers []string, rows [][]string, footers []string) {
	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = utf8.RuneCountInString(header)
	}
	for _, row := range append(rows, footers) {
		for i, cell := range row {
			if i < len(colWidths) && utf8.RuneCountInString(cell) > colWidths[i] {
				colWidths[i] = utf8.RuneCountInString(cell)
			}
		}
	}

	// print header
	printRow(w, colWidths, headers)

	// print rows
	for _, row := range rows {
		printRow(w, colWidths, row)
	}

	// print footer
	if len(footers) > 0 {
		printRow(w, colWidths, footers)
	}
}

func printRow(w io.Writer, colWidths []int, cells []string) {
	for i := range colWidths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		// pad by runes so notes with accents stay aligned
		fmt.Fprintf(w, "%s%s\t", cell, strings.Repeat(" ", colWidths[i]-utf8.RuneCountInString(cell)))
	}
	fmt.Fprintln(w)
}

// FormatMinutes renders a minute count as H:MM, keeping the sign.
func FormatMinutes(total int) string {
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	return fmt.Sprintf("%s%d:%02d", sign, total/60, total%60)
}

// entryRows turns a ledger into table rows, optionally numbered from 1.
func entryRows(entries []Entry, numbered bool) (headers []string, rows [][]string) {
	headers = []string{"Date", "Time", "Action", "Note"}
	if numbered {
		headers = append([]string{"#"}, headers...)
	}

	for i, e := range entries {
		row := []string{e.Date, e.Time, string(e.Action), e.Note}
		if numbered {
			row = append([]string{fmt.Sprint(i + 1)}, row...)
		}
		rows = append(rows, row)
	}

	return headers, rows
}
