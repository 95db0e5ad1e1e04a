package analyze

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/Zuo-Peng/chatstat/internal/errs"
	"github.com/Zuo-Peng/chatstat/internal/parse"
)

const sample = `01/02/2024, 09:00 - Messages and calls are end-to-end encrypted.
01/02/2024, 09:01 - Alice: morning
01/02/2024, 09:02 - Bob: hi Alice
how are you
02/02/2024, 21:15 - Alice: fine
`

func write(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestAnalyzeFile(t *testing.T) {
	path := write(t, "WhatsApp Chat with Bob.txt", []byte(sample))
	report, err := AnalyzeFile(path, Options{KeepMessages: true})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	s := report.Stats
	if s.Total != 4 {
		t.Fatalf("expected 4 messages, got %d", s.Total)
	}
	if s.BySender["Alice"] != 2 || s.BySender["Bob"] != 1 || s.BySender[""] != 1 {
		t.Fatalf("unexpected sender counts %#v", s.BySender)
	}
	if s.ByDate["2024-02-01"] != 3 || s.ByDate["2024-02-02"] != 1 {
		t.Fatalf("unexpected date counts %#v", s.ByDate)
	}
	if report.File.Variant != parse.VariantDash {
		t.Fatalf("expected dash variant, got %s", report.File.Variant)
	}
	if report.Messages[2].Text != "hi Alice\nhow are you" {
		t.Fatalf("unexpected continuation text %q", report.Messages[2].Text)
	}
	if report.Lines != 5 {
		t.Fatalf("expected 5 lines, got %d", report.Lines)
	}
}

func TestAnalyzeEmptyFile(t *testing.T) {
	path := write(t, "_chat.txt", nil)
	report, err := AnalyzeFile(path, Options{})
	if err != nil {
		t.Fatalf("expected no error for empty file, got %v", err)
	}
	if report.Stats.Total != 0 || report.Stats.Earliest != nil || report.Stats.Latest != nil {
		t.Fatalf("unexpected stats for empty file: %+v", report.Stats)
	}
}

func TestAnalyzeCountsUnparseableLines(t *testing.T) {
	path := write(t, "_chat.txt", []byte("preamble\nmore preamble\n01/02/2024, 09:01 - Alice: hi\n"))
	report, err := AnalyzeFile(path, Options{})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.Stats.Unparseable != 2 || report.Stats.Total != 1 {
		t.Fatalf("expected 1 message and 2 unparseable lines, got %+v", report.Stats)
	}
}

func TestAnalyzeDateOrder(t *testing.T) {
	path := write(t, "_chat.txt", []byte("01/02/2024, 10:00 - Alice: hi\n"))
	report, err := AnalyzeFile(path, Options{DateOrder: parse.MonthFirst})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.Stats.ByDate["2024-01-02"] != 1 {
		t.Fatalf("expected January 2 under month-first, got %#v", report.Stats.ByDate)
	}
}

func TestAnalyzeUTF16WithBOM(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.String(sample)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := write(t, "_chat.txt", []byte(data))
	report, err := AnalyzeFile(path, Options{})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.Stats.Total != 4 {
		t.Fatalf("expected 4 messages, got %d", report.Stats.Total)
	}
}

func TestAnalyzeLegacyEncoding(t *testing.T) {
	data, err := charmap.Windows1252.NewEncoder().String("01/02/2024, 10:00 - José: olá\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := write(t, "_chat.txt", []byte(data))

	if _, err := AnalyzeFile(path, Options{}); errs.KindOf(err) != errs.UnreadableEncoding {
		t.Fatalf("expected unreadable_encoding without an encoding, got %v", err)
	}

	report, err := AnalyzeFile(path, Options{Encoding: "windows-1252"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.Stats.BySender["José"] != 1 {
		t.Fatalf("expected decoded sender, got %#v", report.Stats.BySender)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")
	if _, err := AnalyzeFile(missing, Options{}); errs.KindOf(err) != errs.NotFound {
		t.Fatalf("expected not_found, got %v", err)
	}

	bad := write(t, "_chat.txt", []byte("01/02/2024, 10:00 - Alice: \xff\n"))
	_, err := AnalyzeFile(bad, Options{})
	if errs.KindOf(err) != errs.UnreadableEncoding {
		t.Fatalf("expected unreadable_encoding, got %v", err)
	}
	if got := err.Error(); got != bad+": line 1 is not valid UTF-8" {
		t.Fatalf("unexpected message %q", got)
	}

	if _, err := AnalyzeFile(t.TempDir(), Options{}); errs.KindOf(err) != errs.InvalidArgument {
		t.Fatalf("expected invalid_argument for a directory, got %v", err)
	}

	if _, err := AnalyzeFile(bad, Options{Encoding: "klingon"}); errs.KindOf(err) != errs.InvalidArgument {
		t.Fatalf("expected invalid_argument for unknown encoding, got %v", err)
	}
}

func TestAnalyzeBatchIsolatesFailures(t *testing.T) {
	good := write(t, "_chat.txt", []byte(sample))
	missing := filepath.Join(t.TempDir(), "gone.txt")

	results := AnalyzeBatch([]string{missing, good}, Options{})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Err == nil || results[0].Report != nil {
		t.Fatalf("expected first entry to fail")
	}
	if results[1].Err != nil || results[1].Report.Stats.Total != 4 {
		t.Fatalf("expected second entry to succeed, got %+v", results[1])
	}
}

func TestReadExport(t *testing.T) {
	path := write(t, "_chat.txt", []byte(sample))
	text, err := ReadExport(path, 1024*1024, "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if text != sample {
		t.Fatalf("unexpected text %q", text)
	}

	if _, err := ReadExport(path, 10, ""); errs.KindOf(err) != errs.TooLarge {
		t.Fatalf("expected too_large, got %v", err)
	}
}

func TestReadExportLimitsBytesOnDisk(t *testing.T) {
	text := strings.Repeat("中", 100)
	data, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(text)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := write(t, "_chat.txt", []byte(data))

	// 202 bytes on disk, 300 bytes once decoded.
	got, err := ReadExport(path, 250, "")
	if err != nil {
		t.Fatalf("expected file under the on-disk limit to be read, got %v", err)
	}
	if got != text {
		t.Fatalf("unexpected text %q", got)
	}
	if _, err := ReadExport(path, 200, ""); errs.KindOf(err) != errs.TooLarge {
		t.Fatalf("expected too_large, got %v", err)
	}
}
