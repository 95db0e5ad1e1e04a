package render

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/chatstat/internal/stats"
)

// StatsOptions controls the summary layout.
type StatsOptions struct {
	Top     int // participants and busiest dates to list
	NoColor bool
}

// Stats formats a statistics summary as plain text, in the layout the
// analyze command and the tool server share.
func Stats(title string, s stats.Statistics, opts StatsOptions) string {
	if opts.Top <= 0 {
		opts.Top = 5
	}

	var b strings.Builder
	heading := func(h string) {
		if opts.NoColor {
			b.WriteString(h + "\n")
			return
		}
		b.WriteString(colorSender + h + colorReset + "\n")
	}

	heading("Chat Analysis: " + title)
	fmt.Fprintf(&b, "Total Messages: %d\n", s.Total)
	if s.Total == 0 {
		b.WriteString("No messages found in the chat file.\n")
		if s.Unparseable > 0 {
			fmt.Fprintf(&b, "Unparseable lines: %d\n", s.Unparseable)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Participants: %d\n", s.Participants())
	fmt.Fprintf(&b, "First message: %s\n", s.Earliest.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Last message:  %s\n", s.Latest.Format("2006-01-02 15:04"))
	if h := s.PeakHour(); h >= 0 {
		fmt.Fprintf(&b, "Peak hour: %02d:00 (%d messages)\n", h, s.ByHour[h])
	}

	b.WriteString("\n")
	heading("Top Participants:")
	for _, sc := range s.TopSenders(opts.Top) {
		name := sc.Sender
		if name == "" {
			name = "(system)"
		}
		fmt.Fprintf(&b, "- %s: %d messages (%.1f%%)\n", name, sc.Count, sc.Percent)
	}

	b.WriteString("\n")
	heading("Busiest Days:")
	for _, dc := range s.BusiestDates(opts.Top) {
		fmt.Fprintf(&b, "- %s: %d messages\n", dc.Date, dc.Count)
	}

	if s.Unparseable > 0 {
		fmt.Fprintf(&b, "\nUnparseable lines: %d\n", s.Unparseable)
	}
	return b.String()
}
