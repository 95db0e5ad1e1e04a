package parse

import (
	"strings"
	"testing"
	"time"
)

func TestClassifyAmbiguousDate(t *testing.T) {
	line := "01/02/2024, 10:00 - Alice: hi"

	dayFirst := Classify(line, DayFirst)
	if dayFirst.Kind != LineMessage {
		t.Fatalf("expected message line, got kind %d", dayFirst.Kind)
	}
	if dayFirst.Timestamp.Month() != time.February || dayFirst.Timestamp.Day() != 1 {
		t.Fatalf("day-first: expected February 1, got %s", dayFirst.Timestamp.Format("2006-01-02"))
	}

	monthFirst := Classify(line, MonthFirst)
	if monthFirst.Timestamp.Month() != time.January || monthFirst.Timestamp.Day() != 2 {
		t.Fatalf("month-first: expected January 2, got %s", monthFirst.Timestamp.Format("2006-01-02"))
	}
	if monthFirst.Sender != "Alice" || monthFirst.Text != "hi" {
		t.Fatalf("unexpected sender/text %q/%q", monthFirst.Sender, monthFirst.Text)
	}
}

func TestClassifyUnambiguousDateIgnoresPreference(t *testing.T) {
	// 25 cannot be a month, so both orders agree.
	for _, order := range []DateOrder{DayFirst, MonthFirst} {
		l := Classify("25/12/2023, 18:30 - Bob: merry", order)
		if got := l.Timestamp.Format("2006-01-02 15:04"); got != "2023-12-25 18:30" {
			t.Fatalf("%s: expected 2023-12-25 18:30, got %s", order, got)
		}
		l = Classify("12/25/2023, 18:30 - Bob: merry", order)
		if got := l.Timestamp.Format("2006-01-02"); got != "2023-12-25" {
			t.Fatalf("%s: expected 2023-12-25, got %s", order, got)
		}
	}
}

func TestClassifyVariants(t *testing.T) {
	cases := []struct {
		name    string
		line    string
		kind    LineKind
		variant Variant
		ts      string
		sender  string
		text    string
	}{
		{
			name: "bracket with seconds", line: "[03/04/2024, 09:15:42] Carol: see you",
			kind: LineMessage, variant: VariantBracket, ts: "2024-04-03 09:15:42", sender: "Carol", text: "see you",
		},
		{
			name: "bracket with pm and narrow space", line: "[3/4/24, 9:15:42\u202fPM] Carol: late",
			kind: LineMessage, variant: VariantBracket, ts: "2024-04-03 21:15:42", sender: "Carol", text: "late",
		},
		{
			name: "dash with am", line: "3/4/24, 12:05 am - Dave: midnight",
			kind: LineMessage, variant: VariantDash, ts: "2024-04-03 00:05:00", sender: "Dave", text: "midnight",
		},
		{
			name: "dotted date", line: "03.04.2024, 07:00 - Eve: morning",
			kind: LineMessage, variant: VariantDash, ts: "2024-04-03 07:00:00", sender: "Eve", text: "morning",
		},
		{
			name: "year first", line: "2024-04-03, 07:00 - Eve: iso",
			kind: LineMessage, variant: VariantDash, ts: "2024-04-03 07:00:00", sender: "Eve", text: "iso",
		},
		{
			name: "system notice", line: "01/02/2024, 10:00 - Messages and calls are end-to-end encrypted.",
			kind: LineNotice, variant: VariantDash, ts: "2024-02-01 10:00:00", sender: "", text: "Messages and calls are end-to-end encrypted.",
		},
		{
			name: "bracket notice with direction mark", line: "\u200e[01/02/2024, 10:00:00] Alice joined",
			kind: LineNotice, variant: VariantBracket, ts: "2024-02-01 10:00:00", sender: "", text: "Alice joined",
		},
		{
			name: "message colon in text", line: "01/02/2024, 10:00 - Alice: note: bring snacks",
			kind: LineMessage, variant: VariantDash, ts: "2024-02-01 10:00:00", sender: "Alice", text: "note: bring snacks",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := Classify(tc.line, DayFirst)
			if l.Kind != tc.kind {
				t.Fatalf("expected kind %d, got %d", tc.kind, l.Kind)
			}
			if l.Variant != tc.variant {
				t.Fatalf("expected variant %s, got %s", tc.variant, l.Variant)
			}
			if got := l.Timestamp.Format("2006-01-02 15:04:05"); got != tc.ts {
				t.Fatalf("expected timestamp %s, got %s", tc.ts, got)
			}
			if l.Sender != tc.sender || l.Text != tc.text {
				t.Fatalf("expected %q/%q, got %q/%q", tc.sender, tc.text, l.Sender, l.Text)
			}
		})
	}
}

func TestClassifyContinuations(t *testing.T) {
	for _, line := range []string{
		"just some text",
		"12/03/2024 was a great day",
		"31/02/2024, 10:00 - Alice: not a real date",
		"01/02/2024, 25:00 - Alice: not a real hour",
		"",
	} {
		if l := Classify(line, DayFirst); l.Kind != LineContinuation {
			t.Fatalf("expected continuation for %q, got kind %d", line, l.Kind)
		}
	}
}

func TestParserContinuationJoinsLines(t *testing.T) {
	input := "01/02/2024, 10:00 - Alice: first\nsecond\nthird\n"
	res, err := Parse(strings.NewReader(input), DayFirst)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(res.Messages))
	}
	if res.Messages[0].Text != "first\nsecond\nthird" {
		t.Fatalf("unexpected text %q", res.Messages[0].Text)
	}
	if res.Unparseable != 0 {
		t.Fatalf("expected no unparseable lines, got %d", res.Unparseable)
	}
}

func TestParserStateTransitions(t *testing.T) {
	p := NewParser(DayFirst)
	if p.State() != AwaitingRecord {
		t.Fatalf("expected AwaitingRecord initially")
	}
	if _, ok := p.Feed("orphan line"); ok {
		t.Fatalf("orphan line must not produce a record")
	}
	if p.Unparseable() != 1 {
		t.Fatalf("expected 1 unparseable line, got %d", p.Unparseable())
	}
	if _, ok := p.Feed("01/02/2024, 10:00 - Alice: hi"); ok {
		t.Fatalf("first record must stay open")
	}
	if p.State() != HaveOpenRecord {
		t.Fatalf("expected HaveOpenRecord")
	}
	p.Feed("more")
	m, ok := p.Feed("01/02/2024, 10:01 - Bob: yo")
	if !ok || m.Sender != "Alice" || m.Text != "hi\nmore" || m.Line != 2 {
		t.Fatalf("unexpected flushed record %#v", m)
	}
	m, ok = p.Flush()
	if !ok || m.Sender != "Bob" || m.Line != 4 {
		t.Fatalf("unexpected final record %#v", m)
	}
	if p.State() != AwaitingRecord {
		t.Fatalf("expected AwaitingRecord after flush")
	}
}

func TestParserTrimsTrailingBlankLines(t *testing.T) {
	input := "01/02/2024, 10:00 - Alice: hi\n\nthere\n\n\n01/02/2024, 10:01 - Bob: yo"
	res, err := Parse(strings.NewReader(input), DayFirst)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(res.Messages))
	}
	if res.Messages[0].Text != "hi\n\nthere" {
		t.Fatalf("unexpected text %q", res.Messages[0].Text)
	}
}

func TestParseRejectsInvalidUTF8(t *testing.T) {
	input := "01/02/2024, 10:00 - Alice: hi\n\xff\xfe broken\n"
	if _, err := Parse(strings.NewReader(input), DayFirst); err == nil {
		t.Fatalf("expected encoding error")
	}
}

func TestSniff(t *testing.T) {
	bracket := "\n\u200e[01/02/2024, 10:00:00] Alice: hi\n"
	if got := Sniff(strings.NewReader(bracket), 20); got != VariantBracket {
		t.Fatalf("expected bracket, got %s", got)
	}
	dash := "header\n01/02/2024, 10:00 - Alice: hi\n"
	if got := Sniff(strings.NewReader(dash), 20); got != VariantDash {
		t.Fatalf("expected dash, got %s", got)
	}
	if got := Sniff(strings.NewReader("hello\nworld\n"), 20); got != VariantUnknown {
		t.Fatalf("expected unknown, got %s", got)
	}
}

func TestParseDateOrder(t *testing.T) {
	if o, ok := ParseDateOrder("month-first"); !ok || o != MonthFirst {
		t.Fatalf("expected month-first")
	}
	if o, ok := ParseDateOrder(""); !ok || o != DayFirst {
		t.Fatalf("expected day-first default")
	}
	if _, ok := ParseDateOrder("sideways"); ok {
		t.Fatalf("expected unknown order to fail")
	}
}
