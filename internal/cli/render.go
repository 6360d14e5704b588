package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sotflame/pkg/config"
	"github.com/matzehuels/sotflame/pkg/errors"
	"github.com/matzehuels/sotflame/pkg/flame/palette"
	"github.com/matzehuels/sotflame/pkg/pipeline"
)

// renderFlags holds the command-line flags shared by the root and render
// commands. Flags the user did not set leave config file values in place.
type renderFlags struct {
	output      string  // output file; defaults to SotFlame.svg next to the executable
	config      string  // config file; defaults to $XDG_CONFIG_HOME/sotflame/config.toml
	title       string  // heading above the graph
	palette     string  // "hot" (random warm colors) or "hash" (stable per name)
	seed        uint64  // palette seed; 0 keeps hot colors random
	searchColor string  // highlight fill for search matches
	width       float64 // document width
	maxDepth    int     // nesting limit
	noCache     bool    // bypass the artifact cache entirely
	refresh     bool    // re-render even when a cached document exists
	stdout      bool    // write the document to stdout instead of a file
}

func (f *renderFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.output, "output", "o", "", "output file (default \"SotFlame.svg\" next to the executable)")
	fs.StringVar(&f.config, "config", "", "config file (.toml, .yaml or .yml)")
	fs.StringVar(&f.title, "title", "", "heading drawn above the graph (default \"Flame Graph\")")
	fs.StringVar(&f.palette, "palette", "", "color palette: hot (default), hash")
	fs.Uint64Var(&f.seed, "seed", 0, "palette seed for reproducible colors (0 = random hot colors)")
	fs.StringVar(&f.searchColor, "search-color", "", "fill for search matches (default \"rgb(230,0,230)\")")
	fs.Float64Var(&f.width, "width", 0, "document width (default 1200)")
	fs.IntVar(&f.maxDepth, "max-depth", 0, "reject traces nested deeper than this (default 10000)")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")
	fs.BoolVar(&f.refresh, "refresh", false, "re-render even if a cached document exists")
	fs.BoolVar(&f.stdout, "stdout", false, "write the SVG to stdout")
	cmd.MarkFlagsMutuallyExclusive("output", "stdout")
	_ = cmd.MarkFlagFilename("config", "toml", "yaml", "yml")
	_ = cmd.RegisterFlagCompletionFunc("palette", cobra.FixedCompletions(
		[]string{palette.NameHot, palette.NameHash}, cobra.ShellCompDirectiveNoFileComp))
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render <trace.json>",
		Short: "Render a JSON trace as an interactive SVG flame graph",
		Long: `Render reads a JSON array whose first element is the root event. Every
event needs name, start_time, end_time, lasted and sub_events. The SVG is
written only after the whole trace has been parsed and rendered.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// renderJob is a fully resolved render invocation.
type renderJob struct {
	opts   pipeline.Options
	output string
	cache  bool
}

// resolve layers defaults, the config file and explicitly set flags.
func (f *renderFlags) resolve(cmd *cobra.Command, input string, logger *log.Logger) (renderJob, error) {
	var (
		cfg *config.File
		err error
	)
	if f.config != "" {
		cfg, err = config.Load(f.config)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return renderJob{}, err
	}

	job := renderJob{
		opts:   pipeline.Options{Source: input, Logger: logger},
		output: cfg.Output,
		cache:  cfg.CacheEnabled() && !f.noCache,
	}
	cfg.Apply(&job.opts)

	changed := cmd.Flags().Changed
	if changed("title") {
		job.opts.Title = f.title
	}
	if changed("palette") {
		job.opts.Palette = f.palette
	}
	if changed("seed") {
		job.opts.Seed = f.seed
	}
	if changed("search-color") {
		job.opts.SearchColor = f.searchColor
	}
	if changed("width") {
		job.opts.Geometry.Width = f.width
	}
	if changed("max-depth") {
		job.opts.MaxDepth = f.maxDepth
	}
	job.opts.Refresh = f.refresh

	if f.output != "" {
		job.output = f.output
	}
	if job.output == "" {
		job.output = defaultOutputPath()
	}

	if err := job.opts.ValidateAndSetDefaults(); err != nil {
		return renderJob{}, err
	}
	return job, nil
}

func (c *CLI) runRender(cmd *cobra.Command, input string, flags *renderFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	job, err := flags.resolve(cmd, input, logger)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return errors.WrapFS(err, "read %s", input)
	}

	runner := c.newRunner(logger, !job.cache)
	defer runner.Close()

	prog := newProgress(logger)
	var spin *Spinner
	if !flags.stdout && !c.verbose && isatty.IsTerminal(os.Stderr.Fd()) {
		spin = newSpinnerWithContext(ctx, "Rendering "+input)
		spin.Start()
	}

	result, err := runner.Execute(ctx, data, job.opts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	if flags.stdout {
		if _, err := cmd.OutOrStdout().Write(result.SVG); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "write stdout")
		}
		return nil
	}

	if err := os.WriteFile(job.output, result.SVG, 0644); err != nil {
		return errors.WrapFS(err, "write %s", job.output)
	}
	prog.done("Rendered " + input)

	printSuccess("Flame graph written")
	printFile(job.output)
	printStats(result.Stats.Events, result.Stats.Depth, result.CacheHit)
	return nil
}
