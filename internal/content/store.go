// internal/content/store.go

package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrOutsideRoot = errors.New("path outside root")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrIsDir       = errors.New("path is a directory")
)

// IfMatchNone as an ifMatch value means "only if the file does not exist yet".
const IfMatchNone = "none"

// tempPrefix marks in-flight writes; watchers and listings skip these.
const tempPrefix = ".jsondesk-"

// Store reads and writes files under a single data directory.
type Store struct {
	root string // absolute path of the data dir
}

func NewStore(baseDir string, dataRel string) (*Store, error) {
	if dataRel == "" {
		dataRel = "data"
	}
	var joined string
	if filepath.IsAbs(dataRel) {
		joined = filepath.Clean(dataRel)
	} else {
		joined = filepath.Join(baseDir, dataRel)
	}
	root, err := filepath.Abs(joined)
	if err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

type FileInfo struct {
	Path  string // root-relative, forward slashes
	Size  int64
	ETag  string // sha256:<hex>
	Mod   int64  // unix seconds
	IsDir bool
}

func (s *Store) RootAbs() string { return s.root }

func (s *Store) EnsureRoot() error {
	return os.MkdirAll(s.root, 0o755)
}

// IsTemp reports whether a base name belongs to an in-flight write.
func IsTemp(name string) bool {
	return strings.HasPrefix(path.Base(filepath.ToSlash(name)), tempPrefix)
}

// Read returns bytes + etag.
func (s *Store) Read(ctx context.Context, rel string) ([]byte, string, error) {
	abs, err := s.cleanAbs(rel)
	if err != nil {
		return nil, "", err
	}

	if st, err := os.Stat(abs); err == nil && st.IsDir() {
		return nil, "", ErrIsDir
	}

	b, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return b, etagBytes(b), nil
}

// Write replaces rel with data atomically and returns the new etag.
// If ifMatch is non-empty it must equal the current etag, or be
// IfMatchNone for a file that does not exist yet.
func (s *Store) Write(ctx context.Context, rel string, data []byte, ifMatch string) (string, error) {
	abs, err := s.cleanAbs(rel)
	if err != nil {
		return "", err
	}

	if ifMatch != "" {
		_, curETag, err := s.Read(ctx, rel)
		if err != nil && err != ErrNotFound {
			return "", err
		}
		if err == nil && curETag != ifMatch {
			return "", ErrConflict
		}
		if err == ErrNotFound && ifMatch != IfMatchNone {
			return "", ErrConflict
		}
	}

	if st, err := os.Stat(abs); err == nil && st.IsDir() {
		return "", ErrIsDir
	}

	// Refuse if any parent component is a file.
	dir := filepath.Dir(abs)
	if err := s.mkdirAllChecked(dir); err != nil {
		return "", err
	}

	f, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return "", err
	}
	tmp := f.Name()

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmp)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return "", err
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	// Re-check symlink resolution now that parents exist.
	if p, err := filepath.EvalSymlinks(tmp); err == nil {
		if !s.withinResolved(p) {
			_ = os.Remove(tmp)
			return "", ErrOutsideRoot
		}
	}

	if err := os.Rename(tmp, abs); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	return etagBytes(data), nil
}

// Stat describes a single file without reading the directory around it.
func (s *Store) Stat(ctx context.Context, rel string) (FileInfo, error) {
	abs, err := s.cleanAbs(rel)
	if err != nil {
		return FileInfo{}, err
	}
	st, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return FileInfo{}, ErrNotFound
		}
		return FileInfo{}, err
	}
	fi := FileInfo{
		Path:  normalizeRelPath(rel),
		Size:  st.Size(),
		Mod:   st.ModTime().Unix(),
		IsDir: st.IsDir(),
	}
	if !fi.IsDir {
		if b, err := os.ReadFile(abs); err == nil {
			fi.ETag = etagBytes(b)
		}
	}
	return fi, nil
}

// List returns the entries of relDir sorted by name, skipping in-flight writes.
func (s *Store) List(ctx context.Context, relDir string) ([]FileInfo, error) {
	absDir, err := s.cleanAbs(relDir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	out := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if IsTemp(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}

		rel := filepath.ToSlash(filepath.Join(relDir, e.Name()))
		fi := FileInfo{
			Path:  strings.TrimPrefix(rel, "/"),
			Size:  info.Size(),
			Mod:   info.ModTime().Unix(),
			IsDir: info.IsDir(),
		}

		if !fi.IsDir {
			b, err := os.ReadFile(filepath.Join(absDir, e.Name()))
			if err == nil {
				fi.ETag = etagBytes(b)
			}
		}
		out = append(out, fi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Rel converts an absolute path under the root to a root-relative,
// forward-slash path.
func (s *Store) Rel(abs string) (string, error) {
	if !s.within(filepath.Clean(abs)) {
		return "", ErrOutsideRoot
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return "", err
	}
	return normalizeRelPath(filepath.ToSlash(rel)), nil
}

// --- safety boundary ---

func (s *Store) within(p string) bool {
	rootClean := filepath.Clean(s.root)
	return p == rootClean || strings.HasPrefix(p, rootClean+string(filepath.Separator))
}

// withinResolved is within() against the root with its own symlinks resolved.
func (s *Store) withinResolved(p string) bool {
	root, err := filepath.EvalSymlinks(s.root)
	if err != nil {
		return s.within(p)
	}
	return p == root || strings.HasPrefix(p, root+string(filepath.Separator))
}

func (s *Store) cleanAbs(rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	rel = strings.TrimPrefix(rel, "/")
	rel = filepath.FromSlash(rel)

	abs := filepath.Clean(filepath.Join(s.root, rel))
	if !s.within(abs) {
		return "", ErrOutsideRoot
	}

	// prevent symlink escape on existing paths
	if p, err := filepath.EvalSymlinks(abs); err == nil && !s.withinResolved(p) {
		return "", ErrOutsideRoot
	}

	return abs, nil
}

// mkdirAllChecked creates directories but refuses if any component in the path is a file.
func (s *Store) mkdirAllChecked(absDir string) error {
	absDir = filepath.Clean(absDir)
	rootClean := filepath.Clean(s.root)

	if !s.within(absDir) {
		return ErrOutsideRoot
	}

	rel, err := filepath.Rel(rootClean, absDir)
	if err != nil {
		return err
	}
	if rel == "." {
		return os.MkdirAll(rootClean, 0o755)
	}
	cur := rootClean
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part == "" {
			continue
		}
		cur = filepath.Join(cur, part)

		st, err := os.Stat(cur)
		switch {
		case err == nil && !st.IsDir():
			return ErrConflict
		case err == nil:
			continue
		case errors.Is(err, os.ErrNotExist):
			if mkErr := os.MkdirAll(cur, 0o755); mkErr != nil {
				return mkErr
			}
		default:
			return err
		}
	}
	return nil
}

func normalizeRelPath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimPrefix(p, "/")
	p = strings.ReplaceAll(p, `\`, "/")
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return strings.TrimPrefix(p, "/")
}

func etagBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return "sha256:" + hex.EncodeToString(sum[:])
}
