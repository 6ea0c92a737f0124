package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	urlStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	faintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	statusStyles = map[Status]lipgloss.Style{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD7AF")),
		Partial: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00")),
		Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")),
		NoData:  faintStyle,
	}
)

const cellGlyph = "■"

func styleOf(s Status) lipgloss.Style {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return faintStyle
}

// Terminal renders one boxed card: header line, colored day stream and the
// latest non-empty day description.
func Terminal(c Card) string {
	header := fmt.Sprintf("%s %s  %s",
		titleStyle.Render(string(c.Key)),
		urlStyle.Render(c.URL),
		styleOf(c.Status).Render(c.StatusText),
	)

	var stream strings.Builder
	for _, cell := range c.Cells {
		stream.WriteString(styleOf(cell.Status).Render(cellGlyph))
	}

	stats := faintStyle.Render(fmt.Sprintf("uptime %s · incidents %d · outage %s",
		c.UpTime, c.IncidentCount, c.OutageTime))

	lines := []string{header, stream.String(), stats}
	if last := latestWithData(c.Cells); last != nil {
		lines = append(lines, faintStyle.Render(last.Label(c.Key)+": "+last.Description))
	}
	if c.NoLog {
		lines = append(lines, faintStyle.Render("no check log found"))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// WriteTerminal renders each card followed by a blank line.
func WriteTerminal(w io.Writer, cards []Card) error {
	for _, c := range cards {
		if _, err := fmt.Fprintln(w, Terminal(c)); err != nil {
			return err
		}
	}
	return nil
}

func latestWithData(cells []Cell) *Cell {
	for i := len(cells) - 1; i >= 0; i-- {
		if cells[i].Status != NoData {
			return &cells[i]
		}
	}
	return nil
}
