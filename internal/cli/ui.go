package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/couchcryptid/quake-report/internal/presenter"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconCursor  = "▸ "
)

// magnitudeStyle paints the magnitude badge in its bucket colour.
func magnitudeStyle(c presenter.MagnitudeColor) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Hex()))
}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

// printEmptyState prints the message shown in place of an empty list.
func printEmptyState(w io.Writer, msg string) {
	fmt.Fprintln(w, styleWarning.Render(iconWarning)+" "+styleWarning.Render(msg))
}

// headerRow is the row index lipgloss/table passes StyleFunc for headers.
const headerRow = -1

// renderTable draws rows as a bordered table. A cursor in [0, len(rows))
// adds a marker column and bolds that row; pass -1 for a plain list.
func renderTable(rows []presenter.Row, cursor int) string {
	withCursor := cursor >= 0
	headers := []string{"Mag", "Offset", "Location", "Date", "Time"}
	if withCursor {
		headers = append([]string{""}, headers...)
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		line := []string{r.Magnitude, r.Offset, r.Primary, r.Date, r.Time}
		if withCursor {
			marker := "  "
			if i == cursor {
				marker = iconCursor
			}
			line = append([]string{marker}, line...)
		}
		cells[i] = line
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			if row < 0 || row >= len(rows) {
				return lipgloss.NewStyle()
			}
			if withCursor {
				col--
			}
			var style lipgloss.Style
			switch col {
			case -1:
				style = styleTitle
			case 0:
				style = magnitudeStyle(rows[row].Color)
			case 3, 4:
				style = styleDim
			default:
				style = styleValue
			}
			if row == cursor {
				style = style.Bold(true)
			}
			return style
		}).
		Render()
}
