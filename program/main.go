package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/keilerkonzept/liveuniq/internal/output"
	"github.com/keilerkonzept/liveuniq/internal/stream"
	"github.com/keilerkonzept/liveuniq/internal/tally"
)

type Config struct {
	// normalize
	CaseInsensitive bool
	SkipFields      int
	SkipChars       int

	// render
	Head    int
	Reverse bool
	Debug   bool

	// sketch
	ApproxK int
	Sketch  tally.SketchConfig

	// dashboard
	TUI         bool
	AltScreen   bool
	StatsWindow int

	// input
	InputPath  string
	OutputPath string
	MaxLines   int
}

func defaultConfig() Config {
	return Config{
		Sketch:      tally.DefaultSketchConfig(),
		AltScreen:   true,
		StatsWindow: 256,
	}
}

func (c Config) normalizeConfig() tally.NormalizeConfig {
	return tally.NormalizeConfig{
		CaseInsensitive: c.CaseInsensitive,
		SkipFields:      c.SkipFields,
		SkipChars:       c.SkipChars,
	}
}

func (c Config) rankConfig() tally.RankConfig {
	return tally.RankConfig{
		Reverse: c.Reverse,
		Head:    c.Head,
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("liveuniq failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	config := defaultConfig()
	cmd := &cobra.Command{
		Use:   "liveuniq [input [output]]",
		Short: "Count repeated lines, updating the ranking as each line arrives",
		Long: `liveuniq replicates "sort | uniq -c | sort -nr", but redraws the ranked
counts after every input line instead of waiting for the end of the input.

Input is read from the named file, or from stdin when it is omitted or "-".
Output goes to the named file, or to stdout.

Examples:
  tail -f access.log | liveuniq -f 1 -n 10    # top 10 lines ignoring the first field
  liveuniq -i -r words.txt                    # case-insensitive, fewest first
  liveuniq --tui --approx-k 100 big.log       # dashboard with bounded memory`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				config.InputPath = args[0]
			}
			if len(args) > 1 {
				config.OutputPath = args[1]
			}
			if err := validateAndNormalizeConfig(&config); err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), config.Debug)
			slog.Debug("config", "config", fmt.Sprintf("%+v", config))
			if config.TUI {
				return runDashboard(config)
			}
			return run(config, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&config.CaseInsensitive, "ignore-case", "i", config.CaseInsensitive, "Case insensitive comparison of lines")
	flags.IntVarP(&config.SkipFields, "skip-fields", "f", config.SkipFields, "Ignore the first `num` blank-separated fields of each line")
	flags.IntVarP(&config.SkipChars, "skip-chars", "s", config.SkipChars, "Ignore the first `chars` characters of each line, after skipped fields")
	flags.IntVarP(&config.Head, "head", "n", config.Head, "Show only the first `count` rows (0 = all)")
	flags.IntVarP(&config.Head, "limit", "l", config.Head, "Alias for --head")
	flags.BoolVarP(&config.Reverse, "reverse", "r", config.Reverse, "Show the items with the fewest counts first")
	flags.BoolVar(&config.Debug, "debug", config.Debug, "Append frames instead of redrawing them and log every input line")
	flags.IntVar(&config.MaxLines, "max-lines", config.MaxLines, "Stop after reading this many lines (0 = unlimited)")

	flags.IntVar(&config.ApproxK, "approx-k", config.ApproxK, "Track only the approximate top K lines in bounded memory (0 = exact counts)")
	flags.IntVar(&config.Sketch.Width, "sketch-width", config.Sketch.Width, "Sketch width (with --approx-k)")
	flags.IntVar(&config.Sketch.Depth, "sketch-depth", config.Sketch.Depth, "Sketch depth (with --approx-k)")
	flags.Float64Var(&config.Sketch.Decay, "sketch-decay", config.Sketch.Decay, "Counter decay probability on collisions (with --approx-k)")
	flags.IntVar(&config.Sketch.DecayLUTSize, "sketch-decay-lut-size", config.Sketch.DecayLUTSize, "Sketch decay look-up table size (with --approx-k)")

	flags.BoolVar(&config.TUI, "tui", config.TUI, "Show a full-screen dashboard instead of plain output")
	flags.BoolVar(&config.AltScreen, "alt-screen", config.AltScreen, "Use the terminal alternate screen buffer for the dashboard")
	flags.IntVar(&config.StatsWindow, "stats-window", config.StatsWindow, "Number of recent step latencies kept for the dashboard stats")

	_ = flags.MarkHidden("debug")
	_ = flags.MarkHidden("limit")
	return cmd
}

func validateAndNormalizeConfig(config *Config) error {
	if config.SkipFields < 0 {
		return fmt.Errorf("-f must be >= 0")
	}
	if config.SkipChars < 0 {
		return fmt.Errorf("-s must be >= 0")
	}
	if config.Head < 0 {
		return fmt.Errorf("-n must be >= 0")
	}
	if config.MaxLines < 0 {
		return fmt.Errorf("--max-lines must be >= 0")
	}
	if config.ApproxK < 0 {
		return fmt.Errorf("--approx-k must be >= 0")
	}
	if config.ApproxK > 0 {
		config.Sketch.K = config.ApproxK
		if err := config.Sketch.Validate(); err != nil {
			return fmt.Errorf("--approx-k: %w", err)
		}
	}
	if config.TUI && config.OutputPath != "" {
		return fmt.Errorf("choose only one: --tui or an output file")
	}
	if config.InputPath == "-" {
		config.InputPath = ""
	}
	if config.StatsWindow < 16 {
		config.StatsWindow = 16
	}
	return nil
}

func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func newTable(config Config) (tally.Table, error) {
	if config.ApproxK > 0 {
		return tally.NewSketchTable(config.Sketch)
	}
	return tally.NewExactTable(), nil
}

func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func run(config Config, stdin io.Reader, stdout io.Writer) (err error) {
	table, err := newTable(config)
	if err != nil {
		return err
	}
	in, err := openInput(config.InputPath, stdin)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	out, err := openOutput(config.OutputPath, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	stats := newRunStats(config.StatsWindow)
	renderer := output.NewRenderer(bufio.NewWriter(out), output.Config{Debug: config.Debug})
	pipeline := stream.NewPipeline(table, config.normalizeConfig(), config.rankConfig(), renderer,
		stream.WithStepFunc(func(line string, start time.Time) {
			stats.observeStep(start, time.Now())
			slog.Debug("line", "n", stats.lines, "line", line)
		}),
	)

	n, err := pipeline.Run(stream.NewReader(in), config.MaxLines)
	snap := stats.snapshot()
	slog.Debug("done",
		"lines", n,
		"keys", table.Len(),
		"rate", fmt.Sprintf("%d lines/s", snap.avgRate),
		"step_avg", formatMetricDuration(snap.step.avg),
		"step_max", formatMetricDuration(snap.step.max),
	)
	return err
}
