// Package run drives the rename loop: it pulls candidate paths from an
// enumerator, renames each one and decides whether to continue.
package run

import (
	"context"
	"fmt"
	"io"
	"iter"

	"regrename/internal/errors"
	"regrename/internal/log"

	"github.com/gobwas/glob"
)

// Outcome classifies a single loop iteration
type Outcome int

const (
	// Renamed means the file was moved to its new name
	Renamed Outcome = iota
	// Skipped means the path was left alone and the loop continues
	Skipped
	// Stopped means a fatal error ended the loop
	Stopped
)

func (o Outcome) String() string {
	switch o {
	case Renamed:
		return "renamed"
	case Skipped:
		return "skipped"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Source yields candidate paths
type Source interface {
	Paths() iter.Seq[string]
	Rel(path string) string
}

// Renamer renames a single path
type Renamer interface {
	Rename(path string) (string, error)
}

// Result summarizes a run
type Result struct {
	Renamed int
	Skipped int
	// Err is the error that stopped the loop, if any
	Err error
}

// Stopped reports whether a fatal error ended the run
func (r Result) Stopped() bool {
	return r.Err != nil
}

// Runner executes the rename loop
type Runner struct {
	renamer Renamer
	exclude []glob.Glob
	out     io.Writer

	onRenamed func(dest string)
}

// NewRunner creates a Runner. Exclude patterns are compiled with '/' as the
// separator and matched against paths relative to the source base.
// Diagnostics for fatal errors are written to out.
func NewRunner(renamer Renamer, exclude []string, out io.Writer) (*Runner, error) {
	if out == nil {
		out = io.Discard
	}
	r := &Runner{renamer: renamer, out: out}
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.NewConfigError("invalid exclude pattern", pattern, errors.InvalidConfig, err)
		}
		r.exclude = append(r.exclude, g)
	}
	return r, nil
}

// Excluded reports whether rel matches any exclude pattern
func (r *Runner) Excluded(rel string) bool {
	for _, g := range r.exclude {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Step processes one candidate path and classifies the result. rel is the
// path relative to the enumeration base, used for exclude matching.
func (r *Runner) Step(path, rel string) (Outcome, error) {
	if r.Excluded(rel) {
		log.LogWithFields(log.F("path", path)).Debug("Excluded")
		return Skipped, nil
	}

	dest, err := r.renamer.Rename(path)
	switch {
	case err == nil:
		if r.onRenamed != nil {
			r.onRenamed(dest)
		}
		return Renamed, nil
	case errors.IsPatternFindAbsent(err):
		return Skipped, nil
	default:
		r.report(err)
		return Stopped, err
	}
}

// Run consumes src until it is exhausted, a fatal error occurs, or ctx is
// cancelled. Cancellation is checked between items and is not an error.
func (r *Runner) Run(ctx context.Context, src Source) Result {
	var res Result
	for path := range src.Paths() {
		if ctx.Err() != nil {
			log.Debugf("Run cancelled: %v", ctx.Err())
			break
		}

		outcome, err := r.Step(path, src.Rel(path))
		switch outcome {
		case Renamed:
			res.Renamed++
		case Skipped:
			res.Skipped++
		case Stopped:
			res.Err = err
			return res
		}
	}
	return res
}

// report prints the loop-terminating diagnostic.
func (r *Runner) report(err error) {
	log.LogWithError(err).Debug("Stopping")
	if errors.IsIOError(err) {
		fmt.Fprintf(r.out, "io error: %v\n", errors.Unwrap(err))
		return
	}
	fmt.Fprintln(r.out, errors.KindOf(err))
}
