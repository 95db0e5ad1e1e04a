package index

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zuo-Peng/chatstat/internal/parse"
)

const schema = `
PRAGMA journal_mode = MEMORY;
PRAGMA synchronous = OFF;

CREATE TABLE IF NOT EXISTS chats (
    chat_key   TEXT PRIMARY KEY,
    file_path  TEXT NOT NULL,
    variant    TEXT NOT NULL DEFAULT '',
    earliest   TEXT NOT NULL DEFAULT '',
    latest     TEXT NOT NULL DEFAULT '',
    size       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
    chat_key    TEXT NOT NULL,
    msg_id      INTEGER NOT NULL,
    ts          TEXT NOT NULL DEFAULT '',
    sender      TEXT NOT NULL DEFAULT '',
    text        TEXT NOT NULL,
    line_number INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (chat_key, msg_id)
);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    text,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61'
);

CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
END;
`

// DB is a private, in-memory message index. It lives for one invocation
// and is discarded on Close.
type DB struct {
	db *sql.DB
}

func OpenMemory() (*DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

func (d *DB) ChatCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM chats").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

// FTSCount reports the number of rows in the full-text table, which must
// match MessageCount.
func (d *DB) FTSCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&n)
	return n, err
}

func (d *DB) DeleteChat(chatKey string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE chat_key = ?", chatKey); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM chats WHERE chat_key = ?", chatKey); err != nil {
		return err
	}
	return tx.Commit()
}

type ChatRow struct {
	ChatKey  string
	FilePath string
	Variant  string
	Earliest string
	Latest   string
	Size     int64
}

func (d *DB) GetChat(chatKey string) (*ChatRow, error) {
	var c ChatRow
	err := d.db.QueryRow(
		"SELECT chat_key, file_path, variant, earliest, latest, size FROM chats WHERE chat_key = ?",
		chatKey,
	).Scan(&c.ChatKey, &c.FilePath, &c.Variant, &c.Earliest, &c.Latest, &c.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type MessageRow struct {
	ChatKey    string
	MsgID      int
	Ts         string
	Sender     string
	Text       string
	LineNumber int
}

func (d *DB) GetMessages(chatKey string) ([]MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT chat_key, msg_id, ts, sender, text, line_number FROM messages WHERE chat_key = ? ORDER BY msg_id",
		chatKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []MessageRow
	for rows.Next() {
		var m MessageRow
		if err := rows.Scan(&m.ChatKey, &m.MsgID, &m.Ts, &m.Sender, &m.Text, &m.LineNumber); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ChatMessages returns the stored messages of one chat as parsed records.
func (d *DB) ChatMessages(chatKey string) ([]parse.Message, error) {
	rows, err := d.GetMessages(chatKey)
	if err != nil {
		return nil, err
	}
	msgs := make([]parse.Message, 0, len(rows))
	for _, r := range rows {
		ts, err := time.Parse(tsLayout, r.Ts)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", r.MsgID, err)
		}
		msgs = append(msgs, parse.Message{Timestamp: ts, Sender: r.Sender, Text: r.Text, Line: r.LineNumber})
	}
	return msgs, nil
}
