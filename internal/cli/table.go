package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// MaxCellWidth truncates long cells in console tables.
const MaxCellWidth = 40

// RenderTable renders rows under headers with the sift table styling.
func RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case row%2 == 1:
				return tableOddRowStyle
			default:
				return tableCellStyle
			}
		})

	for _, r := range rows {
		t.Row(truncateAll(r)...)
	}
	return t.Render()
}

func truncateAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = Truncate(c, MaxCellWidth)
	}
	return out
}

// Truncate shortens s to at most n runes, ending with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
