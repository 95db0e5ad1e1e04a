package render

import (
	"strings"
	"testing"
	"time"

	"github.com/Zuo-Peng/chatstat/internal/parse"
	"github.com/Zuo-Peng/chatstat/internal/stats"
)

func at(day, hour int) time.Time {
	return time.Date(2024, time.February, day, hour, 0, 0, 0, time.UTC)
}

func sampleMessages() []parse.Message {
	return []parse.Message{
		{Timestamp: at(1, 9), Sender: "", Text: "Messages are end-to-end encrypted.", Line: 1},
		{Timestamp: at(1, 9), Sender: "Alice", Text: "morning", Line: 2},
		{Timestamp: at(1, 10), Sender: "Bob", Text: "hi Alice\nhow are you", Line: 3},
		{Timestamp: at(2, 21), Sender: "Alice", Text: "fine", Line: 5},
	}
}

func TestWrapLineSkipsEscapes(t *testing.T) {
	lines := wrapLine(colorBoldRed+"abcdef"+colorReset, 3)
	if len(lines) != 2 {
		t.Fatalf("expected 2 wrapped lines, got %q", lines)
	}
	if stripANSI(lines[0]) != "abc" || stripANSI(lines[1]) != "def" {
		t.Fatalf("unexpected wrap %q", lines)
	}
}

func TestWrapLineWideRunes(t *testing.T) {
	lines := wrapLine("明天见", 4)
	if len(lines) != 2 || lines[0] != "明天" || lines[1] != "见" {
		t.Fatalf("unexpected wide wrap %q", lines)
	}
}

func TestHighlightKeywordsIgnoresOperators(t *testing.T) {
	got := highlightKeywords("Picnic and more picnic", `"picnic" AND`)
	want := colorBoldRed + "Picnic" + colorReset + " and more " + colorBoldRed + "picnic" + colorReset
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestConversationMarksHit(t *testing.T) {
	out, hit := Conversation("chat", sampleMessages(), Options{HitLine: 4, NoColor: true})
	if hit < 0 {
		t.Fatalf("expected a hit line")
	}
	lines := strings.Split(out, "\n")
	if lines[hit] != ">> Bob > 2024-02-01 10:00 <<" {
		t.Fatalf("expected Bob's header at hit line, got %q", lines[hit])
	}
	if !strings.Contains(out, "SYSTEM >") {
		t.Fatalf("expected system notice label in %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Fatalf("expected no escapes with NoColor")
	}
}

func TestConversationContextWindow(t *testing.T) {
	out, _ := Conversation("chat", sampleMessages(), Options{HitLine: 2, Context: 1, NoColor: true})
	if strings.Contains(out, "fine") {
		t.Fatalf("expected last message outside the window, got %q", out)
	}
	if !strings.Contains(out, "... (1 messages after) ...") {
		t.Fatalf("expected trailing marker, got %q", out)
	}
}

func TestConversationEmpty(t *testing.T) {
	out, hit := Conversation("chat", nil, Options{})
	if out != "(empty chat)\n" || hit != -1 {
		t.Fatalf("unexpected empty render %q %d", out, hit)
	}
}

func TestStatsSummary(t *testing.T) {
	s := stats.Aggregate(sampleMessages())
	out := Stats("WhatsApp Chat with Bob.txt", s, StatsOptions{NoColor: true})
	for _, want := range []string{
		"Chat Analysis: WhatsApp Chat with Bob.txt",
		"Total Messages: 4",
		"- Alice: 2 messages (50.0%)",
		"- (system): 1 messages (25.0%)",
		"- 2024-02-01: 3 messages",
		"Peak hour: 09:00 (2 messages)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestStatsSummaryEmpty(t *testing.T) {
	out := Stats("_chat.txt", stats.Aggregate(nil), StatsOptions{NoColor: true})
	if !strings.Contains(out, "No messages found") {
		t.Fatalf("unexpected empty summary %q", out)
	}
}
