package parse

import "time"

// Variant names the line-prefix style of an export.
type Variant string

const (
	VariantDash    Variant = "dash"    // 01/02/2024, 10:00 - Alice: hi
	VariantBracket Variant = "bracket" // [01/02/2024, 10:00:00] Alice: hi
	VariantUnknown Variant = "unknown"
)

// DateOrder resolves numeric dates where both leading fields are <= 12.
type DateOrder int

const (
	DayFirst DateOrder = iota
	MonthFirst
)

// ParseDateOrder accepts "day-first"/"dmy" and "month-first"/"mdy".
func ParseDateOrder(s string) (DateOrder, bool) {
	switch s {
	case "", "day-first", "dmy":
		return DayFirst, true
	case "month-first", "mdy":
		return MonthFirst, true
	}
	return DayFirst, false
}

func (o DateOrder) String() string {
	if o == MonthFirst {
		return "month-first"
	}
	return "day-first"
}

type Message struct {
	Timestamp time.Time
	Sender    string // empty for system notices
	Text      string
	Line      int // line number of the first line of the record
	Variant   Variant
}

// IsNotice reports whether the record is a system notice without a sender.
func (m Message) IsNotice() bool {
	return m.Sender == ""
}

type Result struct {
	Messages    []Message
	Lines       int
	Unparseable int
}
