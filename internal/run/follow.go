package run

import (
	"context"
	"os"

	"regrename/internal/log"
	"regrename/internal/watch"
)

// Matcher decides which watched paths are candidates
type Matcher interface {
	Match(path string) bool
	Rel(path string) string
}

// Follow renames files as they are reported on events, one at a time, until
// ctx is done, events is closed, or a fatal error occurs. Files that Follow
// itself just produced are ignored once so a rename cannot retrigger itself.
func (r *Runner) Follow(ctx context.Context, events <-chan watch.FileEvent, m Matcher) Result {
	var res Result

	produced := make(map[string]struct{})
	r.onRenamed = func(dest string) { produced[dest] = struct{}{} }
	defer func() { r.onRenamed = nil }()

	for {
		select {
		case <-ctx.Done():
			return res
		case ev, ok := <-events:
			if !ok {
				return res
			}
			if _, ours := produced[ev.Path]; ours {
				delete(produced, ev.Path)
				continue
			}
			if !m.Match(ev.Path) {
				continue
			}
			if _, err := os.Lstat(ev.Path); err != nil {
				// Reported twice, or removed before we got to it.
				continue
			}

			log.LogWithFields(log.F("path", ev.Path)).Debug("New file")
			outcome, err := r.Step(ev.Path, m.Rel(ev.Path))
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
	}
}
