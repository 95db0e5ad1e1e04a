package errs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestFromOSClassifiesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")
	_, err := os.Open(path)
	wrapped := FromOS(path, err)
	if KindOf(wrapped) != NotFound {
		t.Fatalf("expected not_found, got %q", KindOf(wrapped))
	}
	if !errors.Is(wrapped, fs.ErrNotExist) {
		t.Fatalf("expected wrapped error to unwrap to fs.ErrNotExist")
	}
}

func TestFromOSKeepsExistingKind(t *testing.T) {
	orig := New(UnreadableEncoding, "a.txt", "line %d is not valid UTF-8", 3)
	got := FromOS("a.txt", fmt.Errorf("analyze: %w", orig))
	if KindOf(got) != UnreadableEncoding {
		t.Fatalf("expected unreadable_encoding, got %q", KindOf(got))
	}
}

func TestKindOfPlainErrors(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != Internal {
		t.Fatalf("expected internal, got %q", got)
	}
	if got := KindOf(fmt.Errorf("stat: %w", fs.ErrPermission)); got != PermissionDenied {
		t.Fatalf("expected permission_denied, got %q", got)
	}
}

func TestErrorMessageIncludesPath(t *testing.T) {
	err := New(NotFound, "/tmp/chats", "not a directory")
	if err.Error() != "/tmp/chats: not a directory" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
