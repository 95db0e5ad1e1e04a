package index

import (
	"fmt"
	"log/slog"

	"github.com/Zuo-Peng/chatstat/internal/analyze"
	"github.com/Zuo-Peng/chatstat/internal/scan"
)

const tsLayout = "2006-01-02T15:04:05"

type Stats struct {
	Scanned int
	Indexed int
	Empty   int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d indexed=%d empty=%d errors=%d",
		s.Scanned, s.Indexed, s.Empty, s.Errors)
}

// IndexAll analyzes every file and loads its messages. Files that fail to
// analyze are counted and skipped.
func IndexAll(db *DB, files []scan.ExportFile, opts analyze.Options, logger *slog.Logger) (Stats, error) {
	var stats Stats
	stats.Scanned = len(files)

	opts.KeepMessages = true
	for _, fi := range files {
		report, err := analyze.AnalyzeFile(fi.Path, opts)
		if err != nil {
			stats.Errors++
			if logger != nil {
				logger.Warn("index: analyze failed", "path", fi.Path, "err", err)
			}
			continue
		}
		if len(report.Messages) == 0 {
			stats.Empty++
			continue
		}
		if err := Load(db, report); err != nil {
			return stats, fmt.Errorf("load %s: %w", fi.Path, err)
		}
		stats.Indexed++
	}
	return stats, nil
}

// Load inserts one analyzed export, replacing any earlier copy. The chat
// key is the file path.
func Load(db *DB, report *analyze.Report) error {
	key := report.File.Path
	if err := db.DeleteChat(key); err != nil {
		return err
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var earliest, latest string
	if report.Stats.Earliest != nil {
		earliest = report.Stats.Earliest.Format(tsLayout)
	}
	if report.Stats.Latest != nil {
		latest = report.Stats.Latest.Format(tsLayout)
	}

	_, err = tx.Exec(
		`INSERT INTO chats (chat_key, file_path, variant, earliest, latest, size)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		key, report.File.Path, string(report.File.Variant), earliest, latest, report.File.Size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (chat_key, msg_id, ts, sender, text, line_number)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range report.Messages {
		if _, err := stmt.Exec(key, i, m.Timestamp.Format(tsLayout), m.Sender, m.Text, m.Line); err != nil {
			return err
		}
	}

	return tx.Commit()
}
