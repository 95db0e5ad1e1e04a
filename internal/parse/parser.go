package parse

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/Zuo-Peng/chatstat/internal/errs"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

type State int

const (
	AwaitingRecord State = iota
	HaveOpenRecord
)

// Parser folds lines into records. A timestamped line opens a record and
// closes the previous one; other lines extend the open record.
type Parser struct {
	order       DateOrder
	open        *Message
	line        int
	unparseable int
}

func NewParser(order DateOrder) *Parser {
	return &Parser{order: order}
}

func (p *Parser) State() State {
	if p.open != nil {
		return HaveOpenRecord
	}
	return AwaitingRecord
}

// Unparseable counts lines dropped because no record was open.
func (p *Parser) Unparseable() int {
	return p.unparseable
}

// Feed consumes one line and returns the record it closed, if any.
func (p *Parser) Feed(raw string) (Message, bool) {
	p.line++
	l := Classify(raw, p.order)

	if l.Kind == LineContinuation {
		if p.open == nil {
			if strings.TrimSpace(l.Text) != "" {
				p.unparseable++
			}
			return Message{}, false
		}
		p.open.Text += "\n" + l.Text
		return Message{}, false
	}

	closed, ok := p.Flush()
	p.open = &Message{
		Timestamp: l.Timestamp,
		Sender:    l.Sender,
		Text:      l.Text,
		Line:      p.line,
		Variant:   l.Variant,
	}
	return closed, ok
}

// Flush closes the open record, if any.
func (p *Parser) Flush() (Message, bool) {
	if p.open == nil {
		return Message{}, false
	}
	m := *p.open
	m.Text = strings.TrimRight(m.Text, "\n")
	p.open = nil
	return m, true
}

// Parse reads every line of r. Lines that are not valid UTF-8 fail the
// whole read with an UnreadableEncoding error.
func Parse(r io.Reader, order DateOrder) (*Result, error) {
	res := &Result{}
	err := Each(r, order, func(m Message) bool {
		res.Messages = append(res.Messages, m)
		return true
	}, res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Each streams records to fn without keeping them. fn returning false
// stops the read early. Line and diagnostic counters go to res when it is
// not nil.
func Each(r io.Reader, order DateOrder, fn func(Message) bool, res *Result) error {
	p := NewParser(order)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	defer func() {
		if res != nil {
			res.Lines = lineNum
			res.Unparseable = p.Unparseable()
		}
	}()

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if !utf8.ValidString(line) {
			return errs.New(errs.UnreadableEncoding, "", "line %d is not valid UTF-8", lineNum)
		}
		if m, ok := p.Feed(line); ok && !fn(m) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if m, ok := p.Flush(); ok {
		fn(m)
	}
	return nil
}

// Sniff returns the variant of the first timestamped line among the first
// maxLines non-empty lines of r.
func Sniff(r io.Reader, maxLines int) Variant {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	seen := 0
	for scanner.Scan() && seen < maxLines {
		line := scanner.Text()
		if strings.TrimSpace(Clean(line)) == "" {
			continue
		}
		seen++
		if l := Classify(line, DayFirst); l.Kind != LineContinuation {
			return l.Variant
		}
	}
	return VariantUnknown
}
