package main

import (
	"fmt"
	"io"
	"strings"

	"remindcal/internal/calendar"
)

// writeGrid prints a grid as a plain-text table. Today is bracketed, days
// with items carry a count, and past days are dimmed with a dot.
func writeGrid(w io.Writer, g calendar.Grid) {
	fmt.Fprintln(w, g.Title)
	for _, wd := range g.Weekdays {
		fmt.Fprintf(w, "%-7s", wd)
	}
	fmt.Fprintln(w)

	for i, c := range g.Cells {
		fmt.Fprintf(w, "%-7s", cellText(c))
		if i%7 == 6 {
			fmt.Fprintln(w)
		}
	}
	if len(g.Cells)%7 != 0 {
		fmt.Fprintln(w)
	}
}

func cellText(c calendar.Cell) string {
	if c.Blank {
		return ""
	}
	var b strings.Builder
	day := fmt.Sprintf("%d", c.Date.Day)
	switch {
	case c.Today:
		day = "[" + day + "]"
	case c.Past:
		day += "."
	}
	b.WriteString(day)
	if n := c.TotalEvents + c.TotalReminders; n > 0 {
		fmt.Fprintf(&b, "(%d)", n)
	}
	return b.String()
}
