// Package stats folds parsed chat records into message counts.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/Zuo-Peng/chatstat/internal/parse"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// Statistics is the aggregate of one export. Every breakdown sums to Total.
type Statistics struct {
	Total       int            `json:"total_messages"`
	BySender    map[string]int `json:"messages_by_sender"`
	ByDate      map[string]int `json:"messages_by_date"`
	ByMonth     map[string]int `json:"messages_by_month"`
	ByWeekday   map[string]int `json:"messages_by_weekday"`
	ByHour      [24]int        `json:"messages_by_hour"`
	Earliest    *time.Time     `json:"earliest"`
	Latest      *time.Time     `json:"latest"`
	Unparseable int            `json:"unparseable_lines"`
}

type SenderCount struct {
	Sender  string  `json:"sender"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func (s Statistics) String() string {
	return fmt.Sprintf("total=%d senders=%d days=%d unparseable=%d",
		s.Total, len(s.BySender), len(s.ByDate), s.Unparseable)
}

// Aggregator accumulates records in input order.
type Aggregator struct {
	s Statistics
}

func NewAggregator() *Aggregator {
	return &Aggregator{s: Statistics{
		BySender:  map[string]int{},
		ByDate:    map[string]int{},
		ByMonth:   map[string]int{},
		ByWeekday: map[string]int{},
	}}
}

func (a *Aggregator) Add(m parse.Message) {
	ts := m.Timestamp
	a.s.Total++
	a.s.BySender[m.Sender]++
	a.s.ByDate[ts.Format(dateLayout)]++
	a.s.ByMonth[ts.Format(monthLayout)]++
	a.s.ByWeekday[ts.Weekday().String()]++
	a.s.ByHour[ts.Hour()]++

	if a.s.Earliest == nil || ts.Before(*a.s.Earliest) {
		t := ts
		a.s.Earliest = &t
	}
	if a.s.Latest == nil || ts.After(*a.s.Latest) {
		t := ts
		a.s.Latest = &t
	}
}

// AddUnparseable records lines the parser dropped.
func (a *Aggregator) AddUnparseable(n int) {
	a.s.Unparseable += n
}

// Result returns the statistics accumulated so far.
func (a *Aggregator) Result() Statistics {
	return a.s
}

// Aggregate is the one-shot form of Aggregator.
func Aggregate(msgs []parse.Message) Statistics {
	a := NewAggregator()
	for _, m := range msgs {
		a.Add(m)
	}
	return a.Result()
}

// TopSenders returns up to n senders by message count, ties broken by
// name. n <= 0 returns all senders.
func (s Statistics) TopSenders(n int) []SenderCount {
	out := make([]SenderCount, 0, len(s.BySender))
	for sender, count := range s.BySender {
		out = append(out, SenderCount{Sender: sender, Count: count, Percent: percent(count, s.Total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Sender < out[j].Sender
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// BusiestDates returns up to n dates by message count, ties broken by
// the earlier date.
func (s Statistics) BusiestDates(n int) []DateCount {
	out := make([]DateCount, 0, len(s.ByDate))
	for d, c := range s.ByDate {
		out = append(out, DateCount{Date: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Date < out[j].Date
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// PeakHour returns the hour of day with the most messages, or -1 when
// there are none.
func (s Statistics) PeakHour() int {
	peak, best := -1, 0
	for h, c := range s.ByHour {
		if c > best {
			peak, best = h, c
		}
	}
	return peak
}

// Participants counts distinct non-empty senders.
func (s Statistics) Participants() int {
	n := 0
	for sender := range s.BySender {
		if sender != "" {
			n++
		}
	}
	return n
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
