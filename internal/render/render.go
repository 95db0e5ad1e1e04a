package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/chatstat/internal/parse"
)

const (
	colorReset   = "\033[0m"
	colorSender  = "\033[1;34m" // bold blue
	colorNotice  = "\033[2;35m" // dim magenta for system notices
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	HitLine int    // export line number of the message to highlight, 0 = none
	Context int    // messages before/after hit to show
	Width   int    // wrap width (0 = no wrap)
	Query   string // search query for keyword highlighting
	NoColor bool
}

// ftsOperators are FTS5 operators that should not be highlighted as keywords.
var ftsOperators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	var filtered []string
	for _, t := range strings.Fields(query) {
		t = strings.Trim(t, `"`)
		if t != "" && !ftsOperators[t] {
			filtered = append(filtered, t)
		}
	}
	for _, term := range filtered {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// stripANSI removes the escape sequences this package emits.
func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Conversation renders the messages of one export and returns the content
// and the 0-based output line of the hit message header (-1 if no hit).
func Conversation(title string, msgs []parse.Message, opts Options) (string, int) {
	if opts.Context == 0 {
		opts.Context = 10
	}
	if len(msgs) == 0 {
		return "(empty chat)\n", -1
	}

	hitIdx := -1
	if opts.HitLine > 0 {
		for i, m := range msgs {
			if m.Line <= opts.HitLine {
				hitIdx = i
			} else {
				break
			}
		}
	}

	start, end := 0, len(msgs)
	if hitIdx >= 0 && opts.Context > 0 {
		start = max(0, hitIdx-opts.Context)
		end = min(len(msgs), hitIdx+opts.Context+1)
	}

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	separator := colorDim + "--------------------------------------------------" + colorReset

	writeLine := func(s string) {
		if opts.NoColor {
			s = stripANSI(s)
		}
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	writeLine(fmt.Sprintf("%s--- %s (%d messages) ---%s", colorDim, title, len(msgs), colorReset))
	if start > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages before) ...%s", colorDim, start, colorReset))
	}

	for i := start; i < end; i++ {
		m := msgs[i]
		isHit := i == hitIdx
		if i > start {
			writeLine(separator)
		}
		if isHit {
			hitLine = lineCount
		}

		label, color := m.Sender, colorSender
		if m.IsNotice() {
			label, color = "SYSTEM", colorNotice
		}
		ts := m.Timestamp.Format("2006-01-02 15:04")

		if isHit {
			writeLine(fmt.Sprintf("%s>> %s > %s <<%s", colorHit, label, ts, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s >%s %s%s%s", color, label, colorReset, colorDim, ts, colorReset))
		}

		text := m.Text
		if m.IsNotice() {
			text = colorDim + text + colorReset
		}
		text = highlightKeywords(text, opts.Query)
		for _, tl := range strings.Split(indentLines(text, "  "), "\n") {
			writeLine(tl)
		}
		writeLine("")
	}

	if after := len(msgs) - end; after > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages after) ...%s", colorDim, after, colorReset))
	}

	return b.String(), hitLine
}
