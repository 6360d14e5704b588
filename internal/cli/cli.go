// Package cli implements the sotflame command-line interface.
//
// # Commands
//
//   - render: turn a JSON trace into an interactive SVG flame graph
//   - inspect: print statistics about a trace, or browse its events
//   - cache: manage the rendered-artifact cache
//   - completion: generate shell completion scripts
//
// The root command also accepts a trace directly, so
//
//	sotflame trace.json --output flame.svg
//
// is the same as "sotflame render trace.json --output flame.svg".
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels through context.Context; with --verbose the pipeline and cache
// hooks are logged too.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sotflame/pkg/buildinfo"
	"github.com/matzehuels/sotflame/pkg/cache"
	"github.com/matzehuels/sotflame/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sotflame"

	// defaultOutputName is written next to the executable when no output
	// path is given.
	defaultOutputName = "SotFlame.svg"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger  *log.Logger
	verbose bool
}

// New creates a CLI logging to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var flags renderFlags

	root := &cobra.Command{
		Use:   "sotflame [trace.json]",
		Short: "sotflame draws JSON traces as interactive SVG flame graphs",
		Long: `sotflame converts a hierarchical JSON trace of timed events into a static SVG
flame graph. The document embeds a small script for hover details, click to
zoom, reset zoom and regex search, and needs no network access to view.`,
		Version:       buildinfo.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				registerLogHooks(c.Logger)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return c.runRender(cmd, args[0], &flags)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.register(root)

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Execute builds the command tree and runs it with ctx.
func Execute(ctx context.Context) error {
	c := New(os.Stderr, LogInfo)
	return c.RootCommand().ExecuteContext(ctx)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner whose cache keys are scoped to the
// running build.
func (c *CLI) newRunner(logger *log.Logger, noCache bool) *pipeline.Runner {
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope())
	return pipeline.NewRunner(newCache(logger, noCache), keyer, logger)
}

func newCache(logger *log.Logger, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		logger.Debug("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Warn("cannot create cache directory, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/sotflame/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// defaultOutputPath returns SotFlame.svg in the directory of the running
// executable, or in the working directory if that cannot be determined.
func defaultOutputPath() string {
	exe, err := os.Executable()
	if err != nil {
		return defaultOutputName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), defaultOutputName)
}
