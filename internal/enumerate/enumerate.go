// Package enumerate expands <base>/**/<pattern> into candidate paths.
package enumerate

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"regrename/internal/errors"
	"regrename/internal/log"

	"github.com/bmatcuk/doublestar/v4"
)

var errStop = errors.New("enumeration stopped")

// Enumerator walks a base directory and yields every entry whose path
// relative to the base matches **/<pattern>.
type Enumerator struct {
	base    string
	pattern string
}

// New validates filePattern and returns an Enumerator rooted at base.
// A malformed pattern is reported as a GlobError.
func New(base, filePattern string) (*Enumerator, error) {
	pattern := "**/" + filePattern
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.NewGlobError("malformed glob pattern", filePattern, doublestar.ErrBadPattern)
	}
	return &Enumerator{base: base, pattern: pattern}, nil
}

// Base returns the directory the enumerator is rooted at
func (e *Enumerator) Base() string {
	return e.base
}

// Pattern returns the recursive glob, relative to Base
func (e *Enumerator) Pattern() string {
	return e.pattern
}

// Paths returns a lazy sequence of matching paths. The walk happens while the
// sequence is consumed, and breaking out of the range stops it. Entries that
// cannot be read are skipped.
func (e *Enumerator) Paths() iter.Seq[string] {
	return func(yield func(string) bool) {
		fsys := os.DirFS(e.base)
		err := doublestar.GlobWalk(fsys, e.pattern, func(rel string, d fs.DirEntry) error {
			if !yield(e.join(rel)) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			log.LogWithFields(log.F("base", e.base), log.F("error", err)).Debug("Enumeration ended early")
		}
	}
}

// Match reports whether path lies under Base and matches the glob.
func (e *Enumerator) Match(path string) bool {
	rel, err := filepath.Rel(e.base, path)
	if err != nil || rel == "." || !filepath.IsLocal(rel) {
		return false
	}
	ok, err := doublestar.Match(e.pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

// Rel returns path relative to Base, slash separated.
func (e *Enumerator) Rel(path string) string {
	rel, err := filepath.Rel(e.base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (e *Enumerator) join(rel string) string {
	return filepath.Join(e.base, filepath.FromSlash(rel))
}
