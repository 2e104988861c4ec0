// Package catalog holds the fixed, ordered list of files the operator can pick from.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/petervdpas/jsondesk/internal/util"
)

// suggestDistance is the largest edit distance Suggest reports.
const suggestDistance = 2

var ErrEmpty = errors.New("catalog is empty")

// Catalog keeps entries in the order given; it never sorts or deduplicates.
type Catalog struct {
	files []string
}

func New(files []string) (Catalog, error) {
	if len(files) == 0 {
		return Catalog{}, ErrEmpty
	}
	out := make([]string, 0, len(files))
	for i, f := range files {
		clean, err := util.CleanFileName(f)
		if err != nil {
			return Catalog{}, fmt.Errorf("catalog entry %d (%q): %w", i, f, err)
		}
		out = append(out, clean)
	}
	return Catalog{files: out}, nil
}

// Files returns a copy of the entries in catalog order.
func (c Catalog) Files() []string {
	out := make([]string, len(c.files))
	copy(out, c.files)
	return out
}

func (c Catalog) Len() int { return len(c.files) }

// First returns the first entry, or "" for a zero Catalog.
func (c Catalog) First() string {
	if len(c.files) == 0 {
		return ""
	}
	return c.files[0]
}

func (c Catalog) Contains(name string) bool {
	for _, f := range c.files {
		if f == name {
			return true
		}
	}
	return false
}

// Suggest returns up to three entries close to name, nearest first.
// Used for "did you mean" hints on mistyped file names.
func (c Catalog) Suggest(name string) []string {
	type candidate struct {
		file string
		dist int
	}
	name = strings.ToLower(name)
	seen := map[string]bool{}
	var cands []candidate
	for _, f := range c.files {
		if seen[f] {
			continue
		}
		seen[f] = true
		if d := levenshtein.ComputeDistance(name, strings.ToLower(f)); d <= suggestDistance {
			cands = append(cands, candidate{f, d})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })

	out := make([]string, 0, 3)
	for _, cd := range cands {
		if len(out) == 3 {
			break
		}
		out = append(out, cd.file)
	}
	return out
}
