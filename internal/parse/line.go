package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type LineKind int

const (
	LineContinuation LineKind = iota
	LineMessage               // timestamp + sender + text
	LineNotice                // timestamp + text, no sender
)

// Line is one classified input line.
type Line struct {
	Kind      LineKind
	Variant   Variant
	Timestamp time.Time
	Sender    string
	Text      string
}

const (
	datePart = `(\d{1,4})[./-](\d{1,2})[./-](\d{1,4})`
	timePart = `(\d{1,2}):(\d{2})(?::(\d{2}))?(?:\s?([AaPp])\.?\s?[Mm]\.?)?`
)

type linePattern struct {
	variant Variant
	re      *regexp.Regexp
}

// patterns is the closed set of timestamped line shapes. New export
// variants are added here; aggregation does not depend on the shape.
// Submatches: 1-3 date, 4-6 time, 7 am/pm marker, 8 remainder.
var patterns = []linePattern{
	{VariantBracket, regexp.MustCompile(`^\[` + datePart + `,?\s+` + timePart + `\]\s*(.*)$`)},
	{VariantDash, regexp.MustCompile(`^` + datePart + `,?\s+` + timePart + `\s+[-–]\s+(.*)$`)},
}

var cleaner = strings.NewReplacer(
	"\u200e", "",
	"\u200f", "",
	"\ufeff", "",
	"\u202f", " ",
	"\u00a0", " ",
)

// Clean strips direction marks and the BOM and normalizes non-breaking
// spaces, as exported by iOS and Android clients.
func Clean(raw string) string {
	return cleaner.Replace(strings.TrimRight(raw, "\r\n"))
}

// Classify recognizes a single line. A line whose timestamp does not form
// a valid date or time is a continuation.
func Classify(raw string, order DateOrder) Line {
	line := Clean(raw)
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		ts, ok := buildTimestamp(m[1], m[2], m[3], m[4], m[5], m[6], m[7], order)
		if !ok {
			break
		}
		out := Line{Kind: LineNotice, Variant: p.variant, Timestamp: ts, Text: m[8]}
		if sender, text, ok := splitSender(m[8]); ok {
			out.Kind = LineMessage
			out.Sender = sender
			out.Text = text
		}
		return out
	}
	return Line{Kind: LineContinuation, Text: line}
}

func splitSender(rest string) (string, string, bool) {
	if idx := strings.Index(rest, ": "); idx > 0 {
		return strings.TrimSpace(rest[:idx]), rest[idx+2:], true
	}
	if strings.HasSuffix(rest, ":") && len(rest) > 1 && !strings.Contains(rest[:len(rest)-1], ":") {
		return strings.TrimSpace(rest[:len(rest)-1]), "", true
	}
	return "", "", false
}

func buildTimestamp(a, b, c, hh, mm, ss, ampm string, order DateOrder) (time.Time, bool) {
	y, mon, d, ok := resolveDate(a, b, c, order)
	if !ok {
		return time.Time{}, false
	}

	hour, _ := strconv.Atoi(hh)
	minute, _ := strconv.Atoi(mm)
	sec := 0
	if ss != "" {
		sec, _ = strconv.Atoi(ss)
	}
	if minute > 59 || sec > 59 {
		return time.Time{}, false
	}
	switch strings.ToLower(ampm) {
	case "":
		if hour > 23 {
			return time.Time{}, false
		}
	case "a", "p":
		if hour < 1 || hour > 12 {
			return time.Time{}, false
		}
		if hour == 12 {
			hour = 0
		}
		if strings.EqualFold(ampm, "p") {
			hour += 12
		}
	}

	// Exports carry no zone; keep the wall clock as written.
	return time.Date(y, time.Month(mon), d, hour, minute, sec, 0, time.UTC), true
}

func resolveDate(a, b, c string, order DateOrder) (year, month, day int, ok bool) {
	x, _ := strconv.Atoi(a)
	y, _ := strconv.Atoi(b)
	z, _ := strconv.Atoi(c)

	if len(a) == 3 {
		return 0, 0, 0, false
	}
	if len(a) == 4 {
		if len(c) > 2 {
			return 0, 0, 0, false
		}
		year, month, day = x, y, z
	} else {
		if len(c) == 3 {
			return 0, 0, 0, false
		}
		year = z
		if len(c) <= 2 {
			year += 2000
		}
		dayFirst := order == DayFirst
		switch {
		case x > 12 && y <= 12:
			dayFirst = true
		case y > 12 && x <= 12:
			dayFirst = false
		}
		if dayFirst {
			day, month = x, y
		} else {
			month, day = x, y
		}
	}

	if month < 1 || month > 12 || day < 1 {
		return 0, 0, 0, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return 0, 0, 0, false
	}
	return year, month, day, true
}
