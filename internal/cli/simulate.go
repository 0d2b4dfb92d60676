package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/roach88/sequent/internal/dist"
	"github.com/roach88/sequent/internal/policy"
	"github.com/roach88/sequent/internal/sim"
)

// Error codes surfaced by simulation.
const (
	ErrCodeStopping = "STOPPING_TIME_EXCEEDED"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Runs    int
	Truth   int
	Seed    uint64
	Workers int
}

// SimulateReport is the payload of a successful simulate run.
type SimulateReport struct {
	Scenario    string  `json:"scenario"`
	BatchID     string  `json:"batch_id"`
	Truth       string  `json:"truth"`
	Runs        int     `json:"runs"`
	Seed        uint64  `json:"seed"`
	MeanDraws   float64 `json:"mean_draws"`
	StdDevDraws float64 `json:"stddev_draws"`
	MedianDraws float64 `json:"median_draws"`
	P90Draws    float64 `json:"p90_draws"`
	MaxDraws    int     `json:"max_draws"`
	CorrectRate float64 `json:"correct_rate"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Run repeated simulations under the solved policy",
		Long: `Simulate the belief process under the solved decision policy and
report the stopping-time distribution and correct-decision rate.

The true data-generating hypothesis is chosen with --truth (0 or 1), so
both the "null true" and "alternative true" regimes can be exercised.
Results are deterministic for a fixed --seed regardless of --workers.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Runs, "runs", 0, "number of simulation runs (default: scenario's simulation.runs or 1000)")
	cmd.Flags().IntVar(&opts.Truth, "truth", 0, "true data-generating hypothesis (0 or 1)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "batch seed (default: scenario's simulation.seed)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "parallel workers (default: GOMAXPROCS)")

	return cmd
}

func runSimulate(opts *SimulateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Truth != 0 && opts.Truth != 1 {
		return WrapExitError(ExitCommandError, "invalid flag", fmt.Errorf("--truth must be 0 or 1, got %d", opts.Truth))
	}
	truth := dist.Hypothesis(opts.Truth)

	sc, err := LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	m, err := sc.Build()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to construct model", err)
	}

	runs := opts.Runs
	if runs <= 0 {
		runs = sc.Simulation.Runs
	}
	if runs <= 0 {
		runs = 1000
	}
	seed := opts.Seed
	if seed == 0 {
		seed = sc.Simulation.Seed
	}

	slog.Debug("simulating", "scenario", sc.Name, "runs", runs, "truth", truth, "seed", seed)
	batch, err := m.StoppingDistribution(cmd.Context(), runs, truth, seed, opts.Workers)
	if err != nil {
		return simulateError(formatter, err)
	}

	summary := batch.Summarize()
	report := SimulateReport{
		Scenario:    sc.Name,
		BatchID:     batch.ID,
		Truth:       truth.String(),
		Runs:        summary.Runs,
		Seed:        seed,
		MeanDraws:   summary.MeanDraws,
		StdDevDraws: summary.StdDevDraws,
		MedianDraws: summary.MedianDraws,
		P90Draws:    summary.P90Draws,
		MaxDraws:    summary.MaxDraws,
		CorrectRate: summary.CorrectRate,
	}
	slog.Info("batch finished", "batch", batch.ID, "runs", report.Runs,
		"mean_draws", report.MeanDraws, "correct_rate", report.CorrectRate)

	return formatter.Success(report, func(p *message.Printer, w io.Writer) {
		renderSimulateText(p, w, report)
	})
}

// simulateError maps simulation failures to formatted output and exit codes.
func simulateError(formatter *OutputFormatter, err error) error {
	var stopErr *sim.StoppingError
	if errors.As(err, &stopErr) {
		_ = formatter.Error(ErrCodeStopping, stopErr.Error(), map[string]any{
			"max_draws": stopErr.MaxDraws,
			"belief":    stopErr.Belief,
		})
		return WrapExitError(ExitFailure, "simulation aborted", err)
	}
	var degErr *policy.DegenerateError
	if errors.As(err, &degErr) {
		_ = formatter.Error(ErrCodeDegenerate, degErr.Error(), nil)
		return WrapExitError(ExitFailure, "degenerate policy", err)
	}
	return WrapExitError(ExitCommandError, "simulation failed", err)
}

// renderSimulateText writes the human-readable simulation report.
func renderSimulateText(p *message.Printer, w io.Writer, r SimulateReport) {
	p.Fprintf(w, "Scenario: %s (batch %s)\n", r.Scenario, r.BatchID)
	p.Fprintf(w, "Truth: %s, %d runs, seed %d\n", r.Truth, r.Runs, r.Seed)
	p.Fprintf(w, "Stopping time:\n")
	p.Fprintf(w, "  mean   = %.2f draws (stddev %.2f)\n", r.MeanDraws, r.StdDevDraws)
	p.Fprintf(w, "  median = %.1f, p90 = %.1f, max = %d\n", r.MedianDraws, r.P90Draws, r.MaxDraws)
	p.Fprintf(w, "Correct decisions: %.1f%%\n", 100*r.CorrectRate)
}
