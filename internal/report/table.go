// Package report renders sessions as text tables and export files.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/balkashynov/whm/internal/models"
)

// DateLayout is how start times appear in tables
const DateLayout = "02-01-2006 15:04:05"

// Headers are the columns of the session table
var Headers = []string{"Date", "Description", "Group", "Hours", "$Hour", "Total"}

// numeric columns are right aligned
var rightAlign = map[int]bool{3: true, 4: true, 5: true}

// Row is the projection of a session shared by every output format
type Row struct {
	Start       time.Time
	Description string
	Group       string
	Hours       float64
	Rate        float64
	Subtotal    float64
}

// Project maps sessions to rows, keeping their order
func Project(sessions []models.Session) []Row {
	rows := make([]Row, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, Row{
			Start:       s.StartTime.Time,
			Description: s.Description,
			Group:       s.Group,
			Hours:       s.ElapsedHours,
			Rate:        s.Rate,
			Subtotal:    s.Subtotal,
		})
	}
	return rows
}

// Cells formats a row for display
func (r Row) Cells() []string {
	return []string{
		r.Start.Format(DateLayout),
		r.Description,
		r.Group,
		formatAmount(r.Hours),
		formatAmount(r.Rate),
		formatAmount(r.Subtotal),
	}
}

// Totals sums hours and subtotals
func Totals(rows []Row) (hours, subtotal float64) {
	for _, r := range rows {
		hours += r.Hours
		subtotal += r.Subtotal
	}
	return hours, subtotal
}

// Table renders rows as column-aligned lines separated by " | ", header first
func Table(rows []Row) []string {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, r.Cells())
	}
	return formatTable(Headers, cells, rightAlign)
}

// TableWithTotals is Table followed by a rule and a totals line when there is more than one row
func TableWithTotals(rows []Row) []string {
	if len(rows) < 2 {
		return Table(rows)
	}
	hours, subtotal := Totals(rows)
	cells := make([][]string, 0, len(rows)+1)
	for _, r := range rows {
		cells = append(cells, r.Cells())
	}
	cells = append(cells, []string{"Total", "", "", formatAmount(hours), "", formatAmount(subtotal)})

	lines := formatTable(Headers, cells, rightAlign)
	last := len(lines) - 1
	rule := strings.Repeat("-", runewidth.StringWidth(lines[0]))
	return append(lines[:last:last], rule, lines[last])
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, formatRow(headers, widths, rightAlignCols))
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	if rightAlign {
		return runewidth.FillLeft(value, width)
	}
	return runewidth.FillRight(value, width)
}
