package parse

import (
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/Zuo-Peng/chatstat/internal/errs"
)

// NewDecoder wraps r so that a UTF-8 or UTF-16 byte order mark selects the
// matching decoding. Without a BOM the named encoding applies; the empty
// name or "utf-8" passes bytes through unchanged so that invalid UTF-8 is
// reported by the parser instead of being replaced.
func NewDecoder(r io.Reader, name string) (io.Reader, error) {
	var fallback transform.Transformer = encoding.Nop.NewDecoder()
	if !Passthrough(name) {
		enc, err := htmlindex.Get(name)
		if err != nil {
			return nil, errs.New(errs.InvalidArgument, "", "unknown encoding %q", name)
		}
		fallback = enc.NewDecoder()
	}
	return transform.NewReader(r, unicode.BOMOverride(fallback)), nil
}

// Passthrough reports whether name selects the default UTF-8 handling.
func Passthrough(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}
