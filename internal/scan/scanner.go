package scan

import (
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Zuo-Peng/chatstat/internal/errs"
	"github.com/Zuo-Peng/chatstat/internal/parse"
)

const (
	sniffLines = 20
	sniffBytes = 64 * 1024
)

type ExportFile struct {
	Path    string        `json:"path"`
	Variant parse.Variant `json:"variant"`
	Size    int64         `json:"size"`
	Mtime   int64         `json:"mtime"`
}

// Warning is a path skipped during a walk.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return w.Path + ": " + w.Err.Error()
}

type Options struct {
	Patterns []string // doublestar patterns, matched case-insensitively against base names
	Encoding string
	Logger   *slog.Logger
}

// Scan walks one root. All may be called repeatedly; each call re-reads the
// tree. A Scan must not be iterated concurrently.
type Scan struct {
	root     string
	patterns []string
	encoding string
	logger   *slog.Logger
	warnings []Warning
}

// New validates root, which must be an existing directory.
func New(root string, opts Options) (*Scan, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errs.FromOS(root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errs.FromOS(abs, err)
	}
	if !info.IsDir() {
		return nil, errs.New(errs.NotFound, abs, "not a directory")
	}
	// WalkDir does not descend into a symlinked root.
	if abs, err = filepath.EvalSymlinks(abs); err != nil {
		return nil, errs.FromOS(root, err)
	}

	patterns := make([]string, 0, len(opts.Patterns))
	for _, p := range opts.Patterns {
		p = strings.ToLower(p)
		if !doublestar.ValidatePattern(p) {
			return nil, errs.New(errs.InvalidArgument, "", "bad filename pattern %q", p)
		}
		patterns = append(patterns, p)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Scan{
		root:     abs,
		patterns: patterns,
		encoding: opts.Encoding,
		logger:   logger,
	}, nil
}

func (s *Scan) Root() string {
	return s.root
}

// Warnings returns the paths skipped by the most recent walk.
func (s *Scan) Warnings() []Warning {
	return s.warnings
}

// All yields matching files in lexical order. Symlinks are not followed.
func (s *Scan) All() iter.Seq[ExportFile] {
	return func(yield func(ExportFile) bool) {
		s.warnings = nil
		filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.warn(path, err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			if !Match(s.patterns, d.Name()) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				s.warn(path, err)
				return nil
			}
			variant, err := s.sniff(path)
			if err != nil {
				s.warn(path, err)
				return nil
			}

			f := ExportFile{
				Path:    path,
				Variant: variant,
				Size:    info.Size(),
				Mtime:   info.ModTime().Unix(),
			}
			if !yield(f) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// Collect drains All into a slice.
func (s *Scan) Collect() []ExportFile {
	var files []ExportFile
	for f := range s.All() {
		files = append(files, f)
	}
	return files
}

func (s *Scan) warn(path string, err error) {
	err = errs.FromOS(path, err)
	s.warnings = append(s.warnings, Warning{Path: path, Err: err})
	s.logger.Warn("skipping unreadable path", "path", path, "kind", errs.KindOf(err), "err", err)
}

func (s *Scan) sniff(path string) (parse.Variant, error) {
	f, err := os.Open(path)
	if err != nil {
		return parse.VariantUnknown, err
	}
	defer f.Close()

	r, err := parse.NewDecoder(io.LimitReader(f, sniffBytes), s.encoding)
	if err != nil {
		return parse.VariantUnknown, err
	}
	return parse.Sniff(r, sniffLines), nil
}

// Match reports whether name matches any pattern, ignoring case.
func Match(patterns []string, name string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(strings.ToLower(p), lower); ok {
			return true
		}
	}
	return false
}

// Discover scans root, or every entry of roots when root is empty. An
// explicit root must exist; missing default roots are skipped.
func Discover(roots []string, root string, opts Options) ([]ExportFile, []Warning, error) {
	if root == "" {
		return ScanRoots(roots, opts)
	}
	s, err := New(root, opts)
	if err != nil {
		return nil, nil, err
	}
	files := s.Collect()
	return files, s.Warnings(), nil
}

// ScanRoots collects exports under each root. Roots that do not exist are
// skipped, which suits default locations; other root errors are returned.
func ScanRoots(roots []string, opts Options) ([]ExportFile, []Warning, error) {
	var files []ExportFile
	var warnings []Warning
	seen := make(map[string]struct{})

	for _, root := range roots {
		if root == "" {
			continue
		}
		s, err := New(root, opts)
		if err != nil {
			if errs.KindOf(err) == errs.NotFound {
				if opts.Logger != nil {
					opts.Logger.Debug("root not found", "root", root)
				}
				continue
			}
			return nil, nil, err
		}
		for f := range s.All() {
			if _, ok := seen[f.Path]; ok {
				continue
			}
			seen[f.Path] = struct{}{}
			files = append(files, f)
		}
		warnings = append(warnings, s.Warnings()...)
	}

	return files, warnings, nil
}
