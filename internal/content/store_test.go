package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "data")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.EnsureRoot(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestWriteThenReadVerbatim(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	data := []byte("{ not json at all\n")

	etag, err := s.Write(ctx, "teams.json", data, "")
	if err != nil {
		t.Fatal(err)
	}
	got, readTag, err := s.Read(ctx, "teams.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(data) {
		t.Fatalf("read %q", got)
	}
	if etag != readTag {
		t.Fatalf("etag mismatch %s vs %s", etag, readTag)
	}
}

func TestReadMissing(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.Read(context.Background(), "nope.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestOutsideRootRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, _, err := s.Read(ctx, "../config.json"); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("read err = %v", err)
	}
	if _, err := s.Write(ctx, "../../x.json", []byte("{}"), ""); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("write err = %v", err)
	}
}

func TestSymlinkEscapeRejected(t *testing.T) {
	s := newTestStore(t)
	outside := filepath.Join(t.TempDir(), "secret.json")
	if err := os.WriteFile(outside, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(s.RootAbs(), "link.json")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if _, _, err := s.Read(context.Background(), "link.json"); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("err = %v", err)
	}
}

func TestIfMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	etag, err := s.Write(ctx, "a.json", []byte("1"), IfMatchNone)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Write(ctx, "a.json", []byte("2"), IfMatchNone); !errors.Is(err, ErrConflict) {
		t.Fatalf("create-only on existing file: err = %v", err)
	}
	if _, err := s.Write(ctx, "a.json", []byte("2"), "sha256:stale"); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale etag: err = %v", err)
	}
	if _, err := s.Write(ctx, "a.json", []byte("2"), etag); err != nil {
		t.Fatalf("matching etag: err = %v", err)
	}
}

func TestWriteRefusesDirectory(t *testing.T) {
	s := newTestStore(t)
	if err := os.Mkdir(filepath.Join(s.RootAbs(), "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Write(context.Background(), "sub", []byte("x"), ""); !errors.Is(err, ErrIsDir) {
		t.Fatalf("err = %v", err)
	}
}

func TestListSkipsTempFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, n := range []string{"b.json", "a.json"} {
		if _, err := s.Write(ctx, n, []byte("{}"), ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(s.RootAbs(), tempPrefix+"123"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	list, err := s.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Path != "a.json" || list[1].Path != "b.json" {
		t.Fatalf("list = %+v", list)
	}
	if list[0].ETag == "" {
		t.Fatal("expected etag on files")
	}
}

func TestStatAndRel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Write(ctx, "nested/x.json", []byte("[]"), ""); err != nil {
		t.Fatal(err)
	}
	fi, err := s.Stat(ctx, "nested/x.json")
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size != 2 || fi.IsDir || fi.Path != "nested/x.json" {
		t.Fatalf("stat = %+v", fi)
	}
	rel, err := s.Rel(filepath.Join(s.RootAbs(), "nested", "x.json"))
	if err != nil || rel != "nested/x.json" {
		t.Fatalf("rel = %q, %v", rel, err)
	}
	if _, err := s.Rel("/elsewhere/x.json"); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("rel outside: %v", err)
	}
}
