package stats

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/Zuo-Peng/chatstat/internal/parse"
)

func sum(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	if s.Total != 0 {
		t.Fatalf("expected 0 total, got %d", s.Total)
	}
	if s.Earliest != nil || s.Latest != nil {
		t.Fatalf("expected nil earliest/latest for empty input")
	}
	if s.PeakHour() != -1 {
		t.Fatalf("expected no peak hour, got %d", s.PeakHour())
	}
	if len(s.TopSenders(5)) != 0 {
		t.Fatalf("expected no senders")
	}
}

func TestAggregateCountsSumToTotal(t *testing.T) {
	base := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	msgs := []parse.Message{
		{Timestamp: base, Sender: "Alice", Text: "hi"},
		{Timestamp: base.Add(time.Hour), Sender: "Bob", Text: "hey"},
		{Timestamp: base.Add(26 * time.Hour), Sender: "", Text: "Bob left"},
		{Timestamp: base.Add(-48 * time.Hour), Sender: "Alice", Text: "earlier"},
	}
	s := Aggregate(msgs)

	if s.Total != 4 {
		t.Fatalf("expected 4 total, got %d", s.Total)
	}
	for name, m := range map[string]map[string]int{
		"sender": s.BySender, "date": s.ByDate, "month": s.ByMonth, "weekday": s.ByWeekday,
	} {
		if got := sum(m); got != s.Total {
			t.Fatalf("%s counts sum to %d, want %d", name, got, s.Total)
		}
	}
	hours := 0
	for _, c := range s.ByHour {
		hours += c
	}
	if hours != s.Total {
		t.Fatalf("hour counts sum to %d, want %d", hours, s.Total)
	}
	if !s.Earliest.Equal(base.Add(-48*time.Hour)) || !s.Latest.Equal(base.Add(26*time.Hour)) {
		t.Fatalf("unexpected range %s .. %s", s.Earliest, s.Latest)
	}
	if s.Participants() != 2 {
		t.Fatalf("expected 2 participants, got %d", s.Participants())
	}
}

func TestTopSendersOrderAndPercent(t *testing.T) {
	s := Statistics{Total: 10, BySender: map[string]int{"Carol": 2, "Alice": 4, "Bob": 4}}
	top := s.TopSenders(2)
	if len(top) != 2 || top[0].Sender != "Alice" || top[1].Sender != "Bob" {
		t.Fatalf("unexpected order %#v", top)
	}
	if top[0].Percent != 40 {
		t.Fatalf("expected 40%%, got %v", top[0].Percent)
	}
}

func TestBusiestDates(t *testing.T) {
	s := Statistics{ByDate: map[string]int{"2024-01-02": 3, "2024-01-01": 3, "2024-01-03": 5}}
	got := s.BusiestDates(0)
	if got[0].Date != "2024-01-03" || got[1].Date != "2024-01-01" || got[2].Date != "2024-01-02" {
		t.Fatalf("unexpected order %#v", got)
	}
}

// TestRoundTripSyntheticExport writes N known (sender, date, message)
// triples in export form and checks the parsed distribution.
func TestRoundTripSyntheticExport(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	senders := []string{"Alice", "Bob", "Chidi", "Dana"}
	want := map[string]int{}
	wantDates := map[string]int{}

	var b strings.Builder
	start := time.Date(2023, 11, 28, 8, 0, 0, 0, time.UTC)
	const n = 250
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i*37) * time.Minute)
		sender := senders[rng.Intn(len(senders))]
		want[sender]++
		wantDates[ts.Format("2006-01-02")]++
		fmt.Fprintf(&b, "%s - %s: message %d\n", ts.Format("02/01/2006, 15:04"), sender, i)
		if i%7 == 0 {
			b.WriteString("a continuation line\n")
		}
	}

	res, err := parse.Parse(strings.NewReader(b.String()), parse.DayFirst)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	s := Aggregate(res.Messages)
	if s.Total != n {
		t.Fatalf("expected %d messages, got %d", n, s.Total)
	}
	if len(s.BySender) != len(want) {
		t.Fatalf("expected %d senders, got %d", len(want), len(s.BySender))
	}
	for sender, c := range want {
		if s.BySender[sender] != c {
			t.Fatalf("sender %s: expected %d, got %d", sender, c, s.BySender[sender])
		}
	}
	for d, c := range wantDates {
		if s.ByDate[d] != c {
			t.Fatalf("date %s: expected %d, got %d", d, c, s.ByDate[d])
		}
	}
}
