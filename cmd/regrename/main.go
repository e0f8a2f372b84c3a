package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"regrename/cmd/regrename/cli"
	"regrename/internal/config"
	"regrename/internal/enumerate"
	"regrename/internal/log"
	"regrename/internal/rename"
	"regrename/internal/run"
	"regrename/internal/watch"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
)

// Entry point for the application
func main() {
	os.Exit(Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// options holds flag values; config file values fill in whatever was not set
type options struct {
	configFile string
	debug      bool
	logFormat  string
	strict     bool
	summary    bool
	watch      bool
	exclude    []string
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	exitCode := 0
	cmd := NewRootCmd(stdout, stderr, &exitCode)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		cli.PrintFatal(stderr, err)
		return 1
	}
	return exitCode
}

// NewRootCmd creates the root command. exitCode receives the status for
// runs that complete without a startup error.
func NewRootCmd(stdout, stderr io.Writer, exitCode *int) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "regrename <pattern_basepath> <pattern_files> <pattern_find> <pattern_replacement>",
		Short: "Rename files in bulk with a regular expression",
		Long: `regrename walks <pattern_basepath> recursively, selects entries whose name
matches the glob <pattern_files>, and replaces every match of the regular
expression <pattern_find> in each file name with <pattern_replacement>.
The replacement may refer to capture groups as $1 or ${name}.`,
		Example:       `  regrename ./logs '*.log' '(\w+)\.log' '$1.bak'`,
		Version:       version,
		Args:          cobra.ExactArgs(4),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := loadConfig(cmd, &opts)
			if err != nil {
				return err
			}
			configureLogging(cfg, stderr)

			basePath, filePattern, find, replacement := args[0], args[1], args[2], args[3]

			enum, err := enumerate.New(basePath, filePattern)
			if err != nil {
				return fmt.Errorf("failed to read glob pattern for <pattern_files>: %w", err)
			}

			runner, err := run.NewRunner(rename.New(find, replacement, stdout), cfg.Exclude, stdout)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			log.LogWithFields(
				log.F("base", basePath),
				log.F("pattern", enum.Pattern()),
				log.F("find", find),
			).Debug("Starting rename")

			res := runner.Run(ctx, enum)

			if !res.Stopped() && cfg.Watch.Enabled && ctx.Err() == nil {
				followed, err := follow(ctx, runner, enum)
				if err != nil {
					return err
				}
				res.Renamed += followed.Renamed
				res.Skipped += followed.Skipped
				res.Err = followed.Err
			}

			if cfg.Settings.Summary {
				cli.PrintSummary(stderr, res.Renamed, res.Skipped, res.Err)
			}

			if res.Stopped() {
				log.LogWithError(res.Err).Debug("Rename loop stopped")
				if cfg.Settings.StrictExit {
					*exitCode = 1
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default is $HOME/.config/regrename/config.yaml)")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&opts.logFormat, "log-format", config.LogFormatText, "Log format for diagnostics on stderr: text or json")
	flags.BoolVar(&opts.strict, "strict", false, "Exit with status 1 when renaming stops on an error")
	flags.BoolVar(&opts.summary, "summary", false, "Print a summary to stderr when done")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "Keep renaming newly created files until interrupted")
	flags.StringArrayVarP(&opts.exclude, "exclude", "x", nil, "Skip paths (relative to the base path) matching this glob; repeatable")

	return cmd
}

// loadConfig reads the config file and applies flags that were set.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadConfigFile(opts.configFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Settings.Debug = opts.debug
	}
	if flags.Changed("log-format") {
		cfg.Settings.LogFormat = opts.logFormat
	}
	if flags.Changed("strict") {
		cfg.Settings.StrictExit = opts.strict
	}
	if flags.Changed("summary") {
		cfg.Settings.Summary = opts.summary
	}
	if flags.Changed("watch") {
		cfg.Watch.Enabled = opts.watch
	}
	cfg.Exclude = append(cfg.Exclude, opts.exclude...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configureLogging(cfg *config.Config, stderr io.Writer) {
	logOpts := []log.Option{log.WithOutput(stderr), log.WithDebug(cfg.Settings.Debug)}
	if cfg.Settings.LogFormat == config.LogFormatJSON {
		logOpts = append(logOpts, log.WithJSON())
	}
	log.Configure(logOpts...)
}

// follow watches the base path and renames new files until ctx is done.
func follow(ctx context.Context, runner *run.Runner, enum *enumerate.Enumerator) (run.Result, error) {
	w, err := watch.New()
	if err != nil {
		return run.Result{}, err
	}
	if err := w.AddRecursive(enum.Base()); err != nil {
		w.Stop()
		return run.Result{}, err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return run.Result{}, err
	}
	defer w.Stop()

	log.Info("Watching %s for new files. Press Ctrl+C to stop.", enum.Base())
	return runner.Follow(ctx, w.Events(), enum), nil
}
