package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/chatstat/internal/index"
)

type Result struct {
	ChatKey    string  `json:"-"`
	FilePath   string  `json:"path"`
	MsgID      int     `json:"message"`
	Ts         string  `json:"timestamp"`
	Sender     string  `json:"sender"`
	Snippet    string  `json:"snippet"`
	LineNumber int     `json:"line"`
	Rank       float64 `json:"rank,omitempty"`
}

type Options struct {
	Query  string
	Sender string // "" = all senders
	Since  string // "" = no filter, e.g. "2024-01-01"
	Limit  int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

var ftsOperators = map[string]bool{"AND": true, "OR": true, "NOT": true, "NEAR": true}

// ftsQuery quotes terms that FTS5 would reject as barewords, such as
// "what's" or "e-mail". Explicitly quoted queries pass through.
func ftsQuery(q string) string {
	if strings.Contains(q, `"`) {
		return q
	}
	terms := strings.Fields(q)
	for i, t := range terms {
		if ftsOperators[t] || isBareword(t) {
			continue
		}
		terms[i] = `"` + t + `"`
	}
	return strings.Join(terms, " ")
}

func isBareword(t string) bool {
	for _, r := range t {
		if r < 0x80 && !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '*') {
			return false
		}
	}
	return true
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	runes := []rune(text)
	qRunes := []rune(query)
	runePos := indexFold(runes, qRunes)
	if runePos < 0 {
		if len(runes) > contextChars*2 {
			return string(runes[:contextChars*2]) + "..."
		}
		return text
	}
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

// indexFold returns the rune offset of the first case-insensitive match of
// sub in s, or -1. Case folding can change byte lengths, so matching is
// done on runes.
func indexFold(s, sub []rune) int {
	if len(sub) == 0 {
		return -1
	}
	q := string(sub)
	for i := 0; i+len(sub) <= len(s); i++ {
		if strings.EqualFold(string(s[i:i+len(sub)]), q) {
			return i
		}
	}
	return -1
}

func Search(db *index.DB, opts Options) ([]Result, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if containsCJK(opts.Query) {
		return searchLike(db, opts)
	}
	return searchFTS(db, opts)
}

func filters(opts Options, conditions []string, args []interface{}) ([]string, []interface{}) {
	if opts.Sender != "" {
		conditions = append(conditions, "m.sender = ?")
		args = append(args, opts.Sender)
	}
	if opts.Since != "" {
		conditions = append(conditions, "m.ts >= ?")
		args = append(args, opts.Since)
	}
	return conditions, args
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"messages_fts MATCH ?"}
	args := []interface{}{ftsQuery(opts.Query)}
	conditions, args = filters(opts, conditions, args)

	query := fmt.Sprintf(`
		SELECT
			m.chat_key,
			c.file_path,
			m.msg_id,
			m.ts,
			m.sender,
			snippet(messages_fts, 0, '>>>', '<<<', '...', 24) AS snip,
			m.line_number,
			bm25(messages_fts, 1.0) AS rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		JOIN chats c ON m.chat_key = c.chat_key
		WHERE %s
		ORDER BY rank, m.chat_key, m.msg_id
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"m.text LIKE ?"}
	args := []interface{}{"%" + opts.Query + "%"}
	conditions, args = filters(opts, conditions, args)

	query := fmt.Sprintf(`
		SELECT
			m.chat_key,
			c.file_path,
			m.msg_id,
			m.ts,
			m.sender,
			m.text,
			m.line_number
		FROM messages m
		JOIN chats c ON m.chat_key = c.chat_key
		WHERE %s
		ORDER BY m.ts DESC, m.chat_key, m.msg_id
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(&r.ChatKey, &r.FilePath, &r.MsgID, &r.Ts, &r.Sender, &fullText, &r.LineNumber); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.ChatKey, &r.FilePath, &r.MsgID, &r.Ts, &r.Sender,
			&r.Snippet, &r.LineNumber, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
