// Package main provides the CLI entrypoint for keylay.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"keylay/internal/config"
	"keylay/internal/engine"
	"keylay/internal/layout"
	"keylay/internal/model"
	"keylay/internal/playback"
	"keylay/internal/report"
	"keylay/internal/store"
)

const defaultLayout = "qwerty"

const defaultHistoryLast = 20

var errInputConflict = errors.New("--text and --file are mutually exclusive")

var (
	runLayout      string
	runText        string
	runFile        string
	runCompare     bool
	runParallel    bool
	runWorkers     int
	runNoVisualize bool
	runMsPerUnit   float64
	runPressMillis int

	historyLast int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keylay",
		Short:         "Keyboard layout typing-cost analyzer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runRootCmd,
	}

	rootCmd.Flags().StringVar(&runLayout, "layout", defaultLayout, "layout name (builtin or a file in the layout dir)")
	rootCmd.Flags().StringVar(&runText, "text", "", "literal text to simulate")
	rootCmd.Flags().StringVar(&runFile, "file", "", "path to a text file to simulate")
	rootCmd.Flags().BoolVar(&runCompare, "compare", false, "compare lines and report the costliest one")
	rootCmd.Flags().BoolVar(&runParallel, "parallel", false, "evaluate compared lines with a worker pool")
	rootCmd.Flags().IntVar(&runWorkers, "workers", 0, "worker count for --parallel (0 = number of CPUs)")
	rootCmd.Flags().BoolVar(&runNoVisualize, "no-visualize", false, "skip the animation and only print the summary")
	rootCmd.Flags().Float64Var(&runMsPerUnit, "ms-per-unit", engine.DefaultMillisPerUnit, "finger travel time per key unit (ms)")
	rootCmd.Flags().IntVar(&runPressMillis, "press-ms", engine.DefaultPressMillis, "key dwell time for the animation (ms)")

	rootCmd.AddCommand(newLayoutsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runRootCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "layout", &runLayout, fileCfg.Simulate.Layout)
	applyFloatConfig(cmd, "ms-per-unit", &runMsPerUnit, fileCfg.Simulate.MillisPerUnit)
	applyIntConfig(cmd, "press-ms", &runPressMillis, fileCfg.Simulate.PressMillis)
	applyBoolConfig(cmd, "parallel", &runParallel, fileCfg.Simulate.Parallel)
	applyIntConfig(cmd, "workers", &runWorkers, fileCfg.Simulate.Workers)
	applyBoolConfig(cmd, "no-visualize", &runNoVisualize, fileCfg.Simulate.NoVisualize)

	cfg := model.Config{
		Layout:        runLayout,
		Text:          runText,
		File:          runFile,
		Compare:       runCompare,
		Parallel:      runParallel,
		Workers:       runWorkers,
		NoVisualize:   runNoVisualize,
		MillisPerUnit: runMsPerUnit,
		PressMillis:   runPressMillis,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	lay, err := layout.Load(cfg.Layout, config.DefaultLayoutDir())
	if err != nil {
		return fmt.Errorf("failed to load layout: %w", err)
	}
	speed := engine.SpeedModel{MillisPerUnit: cfg.MillisPerUnit, PressMillis: cfg.PressMillis}

	if cfg.Compare {
		return runComparison(cmd, cfg, lay, speed)
	}
	return runSimulation(cmd, cfg, lay, speed)
}

func validateConfig(cfg model.Config) error {
	if cfg.Text != "" && cfg.File != "" {
		return errInputConflict
	}
	if cfg.Text == "" && cfg.File == "" {
		return fmt.Errorf("provide input with --text or --file")
	}
	if cfg.MillisPerUnit <= 0 {
		return fmt.Errorf("--ms-per-unit must be > 0")
	}
	if cfg.PressMillis < 0 {
		return fmt.Errorf("--press-ms must be >= 0")
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("--workers must be >= 0")
	}
	return nil
}

func runSimulation(cmd *cobra.Command, cfg model.Config, lay *layout.Layout, speed engine.SpeedModel) error {
	text := cfg.Text
	source := "text"
	if cfg.File != "" {
		data, err := os.ReadFile(cfg.File)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
		text = string(data)
		source = cfg.File
	}

	trace := engine.Simulate(lay, text)
	sum := engine.Aggregate(trace, speed)

	if !cfg.NoVisualize && len(trace.Events) > 0 && term.IsTerminal(int(os.Stdout.Fd())) {
		if err := playback.Run(lay, trace, speed); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if err := report.RenderSummary(out, lay.Name, sum); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if _, err := fmt.Fprintln(out, ""); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if err := report.RenderFingerTable(out, lay, trace); err != nil {
		return fmt.Errorf("failed to write finger table: %w", err)
	}

	saveRun(model.RunRecord{
		At:               time.Now(),
		Layout:           lay.Name,
		Mode:             "simulate",
		Source:           source,
		Lines:            1,
		Chars:            sum.Chars,
		Skipped:          sum.Skipped,
		Distance:         sum.Distance,
		AlternationRatio: sum.AlternationRatio,
		DurationMs:       sum.Duration.Milliseconds(),
		WPM:              sum.WPM,
	})
	return nil
}

func runComparison(cmd *cobra.Command, cfg model.Config, lay *layout.Layout, speed engine.SpeedModel) error {
	workers := 1
	if cfg.Parallel {
		workers = engine.Workers(cfg.Workers)
	}

	var (
		lines   iter.Seq[string]
		scanErr error
		source  = "text"
	)
	if cfg.File != "" {
		file, err := os.Open(cfg.File)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil {
				// Best-effort close for a read-only input.
				_ = cerr
			}
		}()
		lines = func(yield func(string) bool) {
			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				if !yield(scanner.Text()) {
					return
				}
			}
			scanErr = scanner.Err()
		}
		source = cfg.File
	} else {
		lines = engine.SliceLines(strings.Split(cfg.Text, "\n"))
	}

	lineCount := 0
	counted := func(yield func(string) bool) {
		for line := range lines {
			if strings.TrimSpace(line) != "" {
				lineCount++
			}
			if !yield(line) {
				return
			}
		}
	}

	best, ok := engine.Compare(lay, counted, speed, workers)
	if scanErr != nil {
		return fmt.Errorf("failed to read input file: %w", scanErr)
	}
	out := cmd.OutOrStdout()
	if !ok {
		if _, err := fmt.Fprintln(out, "No lines to compare."); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := report.RenderBest(out, lay.Name, best, lineCount); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	saveRun(model.RunRecord{
		At:               time.Now(),
		Layout:           lay.Name,
		Mode:             "compare",
		Source:           source,
		Lines:            lineCount,
		Chars:            best.Summary.Chars,
		Skipped:          best.Summary.Skipped,
		Distance:         best.Summary.Distance,
		AlternationRatio: best.Summary.AlternationRatio,
		DurationMs:       best.Summary.Duration.Milliseconds(),
		WPM:              best.Summary.WPM,
		BestLine:         best.Line,
	})
	return nil
}

// saveRun records a run in the history database. History is advisory,
// so failures are logged and the run result still stands.
func saveRun(run model.RunRecord) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logErrf("failed to open history db: %v\n", err)
		return
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close history db: %v\n", cerr)
		}
	}()
	if _, err := st.InsertRun(context.Background(), run); err != nil {
		logErrf("failed to save run: %v\n", err)
	}
}

func newLayoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List available layouts",
		Args:  cobra.NoArgs,
		RunE:  runLayoutsCmd,
	}
}

func runLayoutsCmd(cmd *cobra.Command, _ []string) error {
	names := layout.Builtins()
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		seen[name] = struct{}{}
	}

	entries, err := os.ReadDir(config.DefaultLayoutDir())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read layout directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".toml") {
			continue
		}
		name = strings.TrimSuffix(name, ".toml")
		if _, ok := seen[name]; ok {
			continue
		}
		names = append(names, name)
		seen[name] = struct{}{}
	}

	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to last N runs")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open history db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close history db: %v\n", cerr)
		}
	}()

	runs, err := st.ListRuns(context.Background(), historyLast)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if err := report.RenderHistory(cmd.OutOrStdout(), runs); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keylay configuration
# Uncomment a value to enable it. CLI flags override config values.

[simulate]
# layout = %q          # Layout name (builtin: %s)
# ms-per-unit = %.1f   # Finger travel time per key unit (ms)
# press-ms = %d         # Key dwell time for the animation (ms)
# parallel = false      # Evaluate compared lines with a worker pool
# workers = 0           # Worker count (0 = number of CPUs)
# no-visualize = false  # Always skip the animation
`,
		defaultLayout,
		strings.Join(layout.Builtins(), ", "),
		engine.DefaultMillisPerUnit,
		engine.DefaultPressMillis,
	)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
