package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"par-ca/internal/app"
	_ "par-ca/internal/backends/cpu"
	_ "par-ca/internal/backends/gpu"
	"par-ca/internal/config"
	"par-ca/internal/core"
	"par-ca/internal/pattern"
	"par-ca/internal/render"
)

func main() {
	setupLogging()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()
	var configFile string

	cmd := &cobra.Command{
		Use:          "ca",
		Short:        "Toroidal cellular automaton with interchangeable compute backends",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := cfg.MergeFile(configFile, cmd.Flags()); err != nil {
					return err
				}
			}
			return run(cfg, cmd.Flags().Changed("rule"))
		},
	}
	cfg.Bind(cmd.Flags())
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config file, flags take precedence")
	return cmd
}

// setupLogging installs a text handler on stderr. The CA_LOG environment
// variable picks the level (debug, info, warn, error).
func setupLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("CA_LOG")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(cfg config.Config, ruleFromFlag bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	seed := uint64(cfg.Seed)
	if cfg.Seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rule, err := core.ParseRule(cfg.Rule)
	if err != nil {
		return err
	}
	anchor, err := core.ParseAnchor(cfg.Anchor)
	if err != nil {
		return err
	}

	opts := core.Options{
		Rows:            cfg.Rows,
		Cols:            cfg.Cols,
		Rule:            rule,
		Seed:            seed,
		FillProb:        cfg.FillProb,
		VirtualFillProb: cfg.VirtualFillProb,
		Anchor:          anchor,
		Workers:         cfg.Workers,
		KeepTimings:     cfg.Bench,
	}

	if cfg.Pattern != config.PatternRandom {
		p, err := pattern.Load(cfg.Pattern)
		if err != nil {
			return err
		}
		opts.Pattern = p
		// a rule named by the pattern file applies unless --rule was given
		if p.Rule != "" && !ruleFromFlag {
			if r, err := core.ParseRule(p.Rule); err == nil {
				opts.Rule = r
			}
		}
	}

	var frame []byte
	var auto core.Automaton
	if cfg.Render {
		frame = make([]byte, 4*cfg.Rows*cfg.Cols)
		opts.Frame = frame
		opts.RenderHook = func() {
			render.FillBinaryRGBA(frame, auto.Cells(), render.Alive, render.Dead)
		}
	}

	factory, ok := core.Backends()[cfg.Backend]
	if !ok {
		return &core.ConfigurationError{
			Field:  "backend",
			Reason: fmt.Sprintf("unknown backend %q, have %s", cfg.Backend, strings.Join(core.Names(), ", ")),
		}
	}
	auto, err = factory(opts)
	if err != nil {
		return err
	}
	defer auto.Close()

	if err := auto.Prepare(); err != nil {
		return err
	}
	slog.Info("prepared",
		"backend", auto.Name(),
		"cols", cfg.Cols,
		"rows", cfg.Rows,
		"rule", opts.Rule.String(),
		"seed", seed,
		"alive", auto.Stats().Alive,
	)

	if cfg.Render {
		if err := auto.UpdateRenderBuffers(); err != nil {
			return err
		}
		return app.Run(cfg, auto, frame)
	}
	return headless(cfg, auto, opts.Rule)
}

func headless(cfg config.Config, auto core.Automaton, rule core.Rule) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := core.NewCadence(time.Second)
	delay := cfg.RenderDelay()
	start := time.Now()
	live := liveLine{last: start}

	for ctx.Err() == nil {
		logNow := !cfg.Bench && ticker.Ready()
		if err := auto.Evolve(logNow); err != nil {
			return err
		}
		if logNow {
			live.print(auto.Stats())
		}
		if cfg.MaxIterations > 0 && auto.Stats().Iterations >= cfg.MaxIterations {
			break
		}
		if delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
		}
	}
	if live.printed {
		fmt.Println()
	}
	if ctx.Err() != nil {
		slog.Info("interrupted")
	}
	st := auto.Stats()
	mean := time.Duration(0)
	if st.Iterations > 0 {
		mean = st.TotalEvolve / time.Duration(st.Iterations)
	}
	slog.Info("finished",
		"iterations", st.Iterations,
		"elapsed", time.Since(start).Round(time.Millisecond),
		"mean_evolve", mean.Round(time.Microsecond),
	)

	if cfg.Bench {
		printTimings(auto.Timings(), cfg)
	}
	if cfg.Print {
		if err := pattern.Encode(os.Stdout, cfg.Cols, cfg.Rows, auto.Cells(), rule); err != nil {
			return err
		}
	}
	return nil
}

// liveLine rewrites a single status line on stdout.
type liveLine struct {
	lastIt    uint64
	lastTotal time.Duration
	last      time.Time
	printed   bool
}

func (l *liveLine) print(st core.Snapshot) {
	now := time.Now()
	elapsed := now.Sub(l.last).Seconds()
	gens := st.Iterations - l.lastIt
	if elapsed <= 0 || gens == 0 {
		return
	}
	itps := float64(gens) / elapsed
	avg := (st.TotalEvolve - l.lastTotal) / time.Duration(gens)
	l.lastIt = st.Iterations
	l.lastTotal = st.TotalEvolve
	l.last = now
	l.printed = true
	fmt.Printf("\r\033[KIt: %d | It/s: %.0f | alive: %d | evolve: %s | traffic: %s/s",
		st.Iterations, itps, st.Alive,
		avg.Round(time.Microsecond),
		formatBytes(itps*float64(st.BytesPerGen)))
}

// printTimings summarizes the retained per-generation durations.
func printTimings(secs []float64, cfg config.Config) {
	if len(secs) == 0 {
		return
	}
	sorted := slices.Clone(secs)
	slices.Sort(sorted)
	mean, std := stat.MeanStdDev(sorted, nil)
	cells := float64(cfg.Rows) * float64(cfg.Cols)

	fmt.Printf("generations:    %d\n", len(sorted))
	fmt.Printf("mean:           %s\n", seconds(mean))
	fmt.Printf("stddev:         %s\n", seconds(std))
	fmt.Printf("min:            %s\n", seconds(sorted[0]))
	fmt.Printf("median:         %s\n", seconds(stat.Quantile(0.5, stat.Empirical, sorted, nil)))
	fmt.Printf("p99:            %s\n", seconds(stat.Quantile(0.99, stat.Empirical, sorted, nil)))
	fmt.Printf("max:            %s\n", seconds(sorted[len(sorted)-1]))
	fmt.Printf("cell updates/s: %.3g\n", cells/mean)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(time.Microsecond)
}

func formatBytes(b float64) string {
	const unit = 1024.0
	switch {
	case b >= unit*unit*unit:
		return fmt.Sprintf("%.1f GiB", b/(unit*unit*unit))
	case b >= unit*unit:
		return fmt.Sprintf("%.1f MiB", b/(unit*unit))
	case b >= unit:
		return fmt.Sprintf("%.1f KiB", b/unit)
	}
	return fmt.Sprintf("%.0f B", b)
}
