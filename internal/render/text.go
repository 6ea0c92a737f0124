package render

import (
	"fmt"
	"io"
	"strings"
)

var textGlyphs = map[Status]byte{
	Success: '+',
	Partial: '~',
	Failure: 'x',
	NoData:  '.',
}

// StreamString is the stream as one ASCII character per day, oldest first.
func StreamString(cells []Cell) string {
	b := make([]byte, len(cells))
	for i, c := range cells {
		g, ok := textGlyphs[c.Status]
		if !ok {
			g = '?'
		}
		b[i] = g
	}
	return string(b)
}

// WriteText writes a plain report, one block per card, listing every day
// that has data.
func WriteText(w io.Writer, cards []Card) error {
	var b strings.Builder
	for _, c := range cards {
		fmt.Fprintf(&b, "%s (%s): %s\n", c.Key, c.URL, c.StatusText)
		fmt.Fprintf(&b, "  uptime %s, incidents %d, outage %s\n", c.UpTime, c.IncidentCount, c.OutageTime)
		fmt.Fprintf(&b, "  [%s]\n", StreamString(c.Cells))
		for _, cell := range c.Cells {
			if cell.Status == NoData {
				continue
			}
			fmt.Fprintf(&b, "  %s  %-17s %s\n", cell.Date, cell.StatusText, cell.Description)
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
