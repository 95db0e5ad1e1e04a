// Package analyze reads one export at a time and produces its statistics.
// Each file is opened, read to the end and closed before the call returns.
package analyze

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/Zuo-Peng/chatstat/internal/errs"
	"github.com/Zuo-Peng/chatstat/internal/parse"
	"github.com/Zuo-Peng/chatstat/internal/scan"
	"github.com/Zuo-Peng/chatstat/internal/stats"
)

type Options struct {
	DateOrder    parse.DateOrder
	Encoding     string
	KeepMessages bool
	Logger       *slog.Logger
}

type Report struct {
	File     scan.ExportFile  `json:"file"`
	Stats    stats.Statistics `json:"stats"`
	Lines    int              `json:"lines"`
	Messages []parse.Message  `json:"-"`
}

// Result is one entry of a batch; exactly one of Report and Err is set.
type Result struct {
	Path   string
	Report *Report
	Err    error
}

func AnalyzeFile(path string, opts Options) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.FromOS(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errs.FromOS(path, err)
	}
	if info.IsDir() {
		return nil, errs.New(errs.InvalidArgument, path, "is a directory")
	}

	r, err := parse.NewDecoder(f, opts.Encoding)
	if err != nil {
		return nil, withPath(path, err)
	}

	report := &Report{
		File: scan.ExportFile{
			Path:    path,
			Variant: parse.VariantUnknown,
			Size:    info.Size(),
			Mtime:   info.ModTime().Unix(),
		},
	}

	agg := stats.NewAggregator()
	var res parse.Result
	err = parse.Each(r, opts.DateOrder, func(m parse.Message) bool {
		if report.File.Variant == parse.VariantUnknown {
			report.File.Variant = m.Variant
		}
		agg.Add(m)
		if opts.KeepMessages {
			report.Messages = append(report.Messages, m)
		}
		return true
	}, &res)
	if err != nil {
		return nil, withPath(path, err)
	}

	agg.AddUnparseable(res.Unparseable)
	report.Stats = agg.Result()
	report.Lines = res.Lines

	if opts.Logger != nil {
		opts.Logger.Debug("analyzed export", "path", path, "stats", report.Stats.String())
	}
	return report, nil
}

// AnalyzeBatch analyzes each path in order. A failing file is reported in
// its Result and does not stop the batch.
func AnalyzeBatch(paths []string, opts Options) []Result {
	results := make([]Result, 0, len(paths))
	for _, p := range paths {
		report, err := AnalyzeFile(p, opts)
		if err != nil && opts.Logger != nil {
			opts.Logger.Warn("analyze failed", "path", p, "kind", errs.KindOf(err), "err", err)
		}
		results = append(results, Result{Path: p, Report: report, Err: err})
	}
	return results
}

// ReadExport returns the decoded text of an export. Files larger than
// maxBytes on disk are refused.
func ReadExport(path string, maxBytes int64, encoding string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errs.FromOS(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", errs.FromOS(path, err)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return "", errs.New(errs.TooLarge, path, "file is too large (%.1fMB, maximum %.0fMB)",
			float64(info.Size())/1024/1024, float64(maxBytes)/1024/1024)
	}

	// The limit applies to bytes on disk; decoding UTF-16 may grow the text.
	var src io.Reader = f
	var limited *io.LimitedReader
	if maxBytes > 0 {
		limited = &io.LimitedReader{R: f, N: maxBytes + 1}
		src = limited
	}
	r, err := parse.NewDecoder(src, encoding)
	if err != nil {
		return "", withPath(path, err)
	}

	var b strings.Builder
	buf := make([]byte, 8*1024)
	for {
		n, err := r.Read(buf)
		b.Write(buf[:n])
		if limited != nil && limited.N <= 0 {
			return "", errs.New(errs.TooLarge, path, "content exceeded %.0fMB while reading", float64(maxBytes)/1024/1024)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
	}

	text := b.String()
	if parse.Passthrough(encoding) && !utf8.ValidString(text) {
		return "", errs.New(errs.UnreadableEncoding, path, "file is not valid UTF-8")
	}
	return text, nil
}

func withPath(path string, err error) error {
	var e *errs.Error
	if errors.As(err, &e) && e.Path == "" {
		e.Path = path
		return e
	}
	return errs.FromOS(path, err)
}
