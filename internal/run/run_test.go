package run_test

import (
	"bytes"
	"context"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"regrename/internal/enumerate"
	"regrename/internal/errors"
	"regrename/internal/rename"
	"regrename/internal/run"
	"regrename/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource yields a fixed list of paths.
type fakeSource struct {
	paths []string
	seen  int
}

func (f *fakeSource) Paths() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, p := range f.paths {
			f.seen++
			if !yield(p) {
				return
			}
		}
	}
}

func (f *fakeSource) Rel(path string) string { return path }

// fakeRenamer returns scripted errors per path.
type fakeRenamer struct {
	errs  map[string]error
	calls []string
}

func (f *fakeRenamer) Rename(path string) (string, error) {
	f.calls = append(f.calls, path)
	if err, ok := f.errs[path]; ok {
		return "", err
	}
	return path + ".new", nil
}

func TestRunClassification(t *testing.T) {
	renamer := &fakeRenamer{errs: map[string]error{
		"b": errors.NewRenameError("find pattern not present", "b", errors.PatternFindAbsent, nil),
	}}
	src := &fakeSource{paths: []string{"a", "b", "c"}}

	var out bytes.Buffer
	runner, err := run.NewRunner(renamer, nil, &out)
	require.NoError(t, err)

	res := runner.Run(context.Background(), src)
	assert.Equal(t, 2, res.Renamed)
	assert.Equal(t, 1, res.Skipped)
	assert.False(t, res.Stopped())
	assert.Empty(t, out.String())
	assert.Equal(t, []string{"a", "b", "c"}, renamer.calls)
}

func TestRunStopsOnFatalErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		diagnostic string
	}{
		{
			name:       "io error",
			err:        errors.NewRenameError("rename failed", "b", errors.IOError, os.ErrPermission),
			diagnostic: "io error: permission denied\n",
		},
		{
			name:       "regex error",
			err:        errors.NewRenameError("invalid find pattern", "(", errors.RegexError, nil),
			diagnostic: "RegexError\n",
		},
		{
			name:       "unsupported filename",
			err:        errors.NewRenameError("file name is not valid text", "b", errors.UnsupportedFilename, nil),
			diagnostic: "UnsupportedFilename\n",
		},
		{
			name:       "source not file",
			err:        errors.NewRenameError("path has no file name", "/", errors.SourceNotFile, nil),
			diagnostic: "SourceNotFile\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renamer := &fakeRenamer{errs: map[string]error{"b": tt.err}}
			src := &fakeSource{paths: []string{"a", "b", "c"}}

			var out bytes.Buffer
			runner, err := run.NewRunner(renamer, nil, &out)
			require.NoError(t, err)

			res := runner.Run(context.Background(), src)
			assert.Equal(t, 1, res.Renamed)
			assert.True(t, res.Stopped())
			assert.Equal(t, tt.err, res.Err)
			assert.Equal(t, tt.diagnostic, out.String())
			assert.Equal(t, []string{"a", "b"}, renamer.calls, "loop must stop at the failing path")
			assert.Equal(t, 2, src.seen, "enumeration must not continue after a fatal error")
		})
	}
}

func TestRunExclude(t *testing.T) {
	renamer := &fakeRenamer{}
	src := &fakeSource{paths: []string{".git/HEAD-2021", "src/main-2021.go", "vendor/x/y-2021.go"}}

	runner, err := run.NewRunner(renamer, []string{".git/**", "vendor/**"}, nil)
	require.NoError(t, err)

	res := runner.Run(context.Background(), src)
	assert.Equal(t, 1, res.Renamed)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, []string{"src/main-2021.go"}, renamer.calls)

	assert.True(t, runner.Excluded("vendor/a/b/c"))
	assert.False(t, runner.Excluded("src/vendor.go"))
}

func TestNewRunnerInvalidExclude(t *testing.T) {
	_, err := run.NewRunner(&fakeRenamer{}, []string{"[unclosed"}, nil)
	assert.True(t, errors.IsInvalidConfig(err))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	renamer := &fakeRenamer{}
	runner, err := run.NewRunner(renamer, nil, nil)
	require.NoError(t, err)

	res := runner.Run(ctx, &fakeSource{paths: []string{"a", "b"}})
	assert.Zero(t, res.Renamed)
	assert.False(t, res.Stopped())
	assert.Empty(t, renamer.calls)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "renamed", run.Renamed.String())
	assert.Equal(t, "skipped", run.Skipped.String())
	assert.Equal(t, "stopped", run.Stopped.String())
}

// End-to-end over a real directory tree.

func TestRunScenarios(t *testing.T) {
	t.Run("digits replaced", func(t *testing.T) {
		root := testutils.CreateTree(t, "report-2021.txt", "draft.md", "a/b/c/log-1999.txt")
		enum, err := enumerate.New(root, "*.txt")
		require.NoError(t, err)

		var out bytes.Buffer
		runner, err := run.NewRunner(rename.New(`\d{4}`, "YEAR", &out), nil, &out)
		require.NoError(t, err)

		res := runner.Run(context.Background(), enum)
		require.NoError(t, res.Err)
		assert.Equal(t, 2, res.Renamed)

		assert.FileExists(t, filepath.Join(root, "report-YEAR.txt"))
		assert.FileExists(t, filepath.Join(root, "a", "b", "c", "log-YEAR.txt"))
		assert.FileExists(t, filepath.Join(root, "draft.md"))
		assert.Equal(t, 2, strings.Count(out.String(), "Replacing "))
	})

	t.Run("no match is silent", func(t *testing.T) {
		root := testutils.CreateTree(t, "draft.md")
		enum, err := enumerate.New(root, "*")
		require.NoError(t, err)

		var out bytes.Buffer
		runner, err := run.NewRunner(rename.New(`\d{4}`, "YEAR", &out), nil, &out)
		require.NoError(t, err)

		res := runner.Run(context.Background(), enum)
		assert.NoError(t, res.Err)
		assert.Equal(t, 1, res.Skipped)
		assert.Empty(t, out.String())
		assert.FileExists(t, filepath.Join(root, "draft.md"))
	})

	t.Run("capture group", func(t *testing.T) {
		root := testutils.CreateTree(t, "trace.log")
		enum, err := enumerate.New(root, "*.log")
		require.NoError(t, err)

		runner, err := run.NewRunner(rename.New(`(\w+)\.log`, "$1.bak", nil), nil, nil)
		require.NoError(t, err)

		res := runner.Run(context.Background(), enum)
		assert.NoError(t, res.Err)
		assert.FileExists(t, filepath.Join(root, "trace.bak"))
	})

	t.Run("invalid regex stops on first entry", func(t *testing.T) {
		root := testutils.CreateTree(t, "a.txt", "b.txt")
		enum, err := enumerate.New(root, "*.txt")
		require.NoError(t, err)

		var out bytes.Buffer
		runner, err := run.NewRunner(rename.New(`(`, "x", &out), nil, &out)
		require.NoError(t, err)

		res := runner.Run(context.Background(), enum)
		assert.Equal(t, errors.RegexError, errors.KindOf(res.Err))
		assert.Equal(t, "RegexError\n", out.String())

		assert.Equal(t, []string{"a.txt", "b.txt"}, testutils.ListNames(t, root))
	})
}
