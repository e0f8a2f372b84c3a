package rename

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"unicode/utf8"

	"regrename/internal/errors"
	"regrename/internal/log"
)

// Renamer rewrites the file name of candidate paths with a regular
// expression and a replacement template.
type Renamer struct {
	find        string
	replacement string
	out         io.Writer

	re       *regexp.Regexp
	reErr    error
	compiled bool
}

// New creates a Renamer. The find pattern is compiled on first use, so an
// invalid pattern only surfaces once a candidate path is processed.
// Progress lines are written to out.
func New(find, replacement string, out io.Writer) *Renamer {
	if out == nil {
		out = io.Discard
	}
	return &Renamer{
		find:        find,
		replacement: replacement,
		out:         out,
	}
}

func (r *Renamer) compile() (*regexp.Regexp, error) {
	if !r.compiled {
		r.re, r.reErr = regexp.Compile(r.find)
		r.compiled = true
	}
	return r.re, r.reErr
}

// NewName computes the replacement for a single file name without touching
// the filesystem. It returns a PatternFindAbsent error when the find pattern
// does not occur in name.
func (r *Renamer) NewName(name string) (string, error) {
	if !utf8.ValidString(name) {
		return "", errors.NewRenameError("file name is not valid text", name, errors.UnsupportedFilename, nil)
	}

	re, err := r.compile()
	if err != nil {
		return "", errors.NewRenameError("invalid find pattern", r.find, errors.RegexError, err)
	}

	if re.FindStringIndex(name) == nil {
		return "", errors.NewRenameError("find pattern not present", name, errors.PatternFindAbsent, nil)
	}

	return re.ReplaceAllString(name, r.replacement), nil
}

// Rename renames path in place: only the final path component changes.
// It returns the destination path on success.
func (r *Renamer) Rename(path string) (string, error) {
	name := fileName(path)
	if name == "" {
		return "", errors.NewRenameError("path has no file name", path, errors.SourceNotFile, nil)
	}

	newName, err := r.NewName(name)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(filepath.Dir(path), newName)

	fmt.Fprintf(r.out, "Replacing %q with %q\n", path, dest)
	log.LogWithFields(log.F("source", path), log.F("destination", dest)).Debug("Renaming file")

	if err := os.Rename(path, dest); err != nil {
		return "", errors.NewRenameError("rename failed", path, errors.IOError, err)
	}

	return dest, nil
}

// fileName returns the last element of path, or "" when path has none
// (empty, a root, or ending in "." or "..").
func fileName(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	switch base {
	case ".", "..", string(filepath.Separator):
		return ""
	}
	if vol := filepath.VolumeName(path); vol != "" && base == vol {
		return ""
	}
	return base
}
