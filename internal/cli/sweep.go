package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/roach88/sequent/internal/dist"
	"github.com/roach88/sequent/internal/model"
)

// SweepOptions holds flags for the sweep command.
type SweepOptions struct {
	*RootOptions
	Costs   string
	Runs    int
	Truth   int
	Seed    uint64
	Workers int
}

// SweepPoint is one cost's row in the sweep report.
type SweepPoint struct {
	Cost        float64 `json:"cost"`
	Beta        float64 `json:"beta"`
	Alpha       float64 `json:"alpha"`
	Width       float64 `json:"width"`
	MeanDraws   float64 `json:"mean_draws"`
	CorrectRate float64 `json:"correct_rate"`
}

// SweepReport is the payload of a successful sweep run.
type SweepReport struct {
	Scenario string       `json:"scenario"`
	Truth    string       `json:"truth"`
	Runs     int          `json:"runs"`
	Points   []SweepPoint `json:"points"`
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SweepOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sweep <scenario.yaml>",
		Short: "Re-solve across sampling costs and compare policies",
		Long: `Re-solve the scenario across a list of sampling costs and report how
the cutoffs and the mean stopping time move.

A higher sampling cost narrows the continuation band (beta rises, alpha
falls) and shortens the expected sampling run; the sweep makes that
trade-off visible for a concrete parameterization.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Costs, "costs", "", "comma-separated sampling costs to sweep (required)")
	cmd.Flags().IntVar(&opts.Runs, "runs", 0, "simulation runs per cost (default: scenario's simulation.runs or 1000)")
	cmd.Flags().IntVar(&opts.Truth, "truth", 0, "true data-generating hypothesis (0 or 1)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "batch seed (default: scenario's simulation.seed)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "parallel workers (default: GOMAXPROCS)")
	_ = cmd.MarkFlagRequired("costs")

	return cmd
}

// parseCosts parses the --costs flag into positive floats.
func parseCosts(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	costs := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("cost %q is not a number", part)
		}
		if c <= 0 {
			return nil, fmt.Errorf("cost %g must be positive", c)
		}
		costs = append(costs, c)
	}
	if len(costs) == 0 {
		return nil, fmt.Errorf("no costs given")
	}
	return costs, nil
}

func runSweep(opts *SweepOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Truth != 0 && opts.Truth != 1 {
		return WrapExitError(ExitCommandError, "invalid flag", fmt.Errorf("--truth must be 0 or 1, got %d", opts.Truth))
	}
	truth := dist.Hypothesis(opts.Truth)

	costs, err := parseCosts(opts.Costs)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --costs", err)
	}

	sc, err := LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	baseCfg, err := sc.ToConfig()
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

	report := SweepReport{Scenario: sc.Name, Truth: truth.String(), Runs: runs}
	for _, cost := range costs {
		cfg := baseCfg
		cfg.Cost = cost
		point, err := sweepPoint(cmd, cfg, runs, truth, seed, opts.Workers)
		if err != nil {
			return simulateError(formatter, err)
		}
		slog.Debug("sweep point done", "cost", cost, "beta", point.Beta,
			"alpha", point.Alpha, "mean_draws", point.MeanDraws)
		report.Points = append(report.Points, point)
	}

	return formatter.Success(report, func(p *message.Printer, w io.Writer) {
		renderSweepText(p, w, report)
	})
}

// sweepPoint solves and simulates one cost's model.
func sweepPoint(cmd *cobra.Command, cfg model.Config, runs int, truth dist.Hypothesis, seed uint64, workers int) (SweepPoint, error) {
	m, err := model.New(cfg)
	if err != nil {
		return SweepPoint{}, err
	}
	batch, err := m.StoppingDistribution(cmd.Context(), runs, truth, seed, workers)
	if err != nil {
		return SweepPoint{}, err
	}
	cut, err := m.Cutoffs()
	if err != nil {
		return SweepPoint{}, err
	}
	summary := batch.Summarize()
	return SweepPoint{
		Cost:        cfg.Cost,
		Beta:        cut.Beta,
		Alpha:       cut.Alpha,
		Width:       cut.Width(),
		MeanDraws:   summary.MeanDraws,
		CorrectRate: summary.CorrectRate,
	}, nil
}

// renderSweepText writes the human-readable sweep table.
func renderSweepText(p *message.Printer, w io.Writer, r SweepReport) {
	p.Fprintf(w, "Scenario: %s  (truth %s, %d runs per cost)\n", r.Scenario, r.Truth, r.Runs)
	p.Fprintf(w, "%8s %8s %8s %8s %12s %9s\n", "cost", "beta", "alpha", "width", "mean draws", "correct")
	for _, pt := range r.Points {
		p.Fprintf(w, "%8.3f %8.4f %8.4f %8.4f %12.2f %8.1f%%\n",
			pt.Cost, pt.Beta, pt.Alpha, pt.Width, pt.MeanDraws, 100*pt.CorrectRate)
	}
}
