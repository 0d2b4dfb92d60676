package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/roach88/sequent/internal/model"
	"github.com/roach88/sequent/internal/policy"
	"github.com/roach88/sequent/internal/solver"
)

// Error codes surfaced by solving.
const (
	ErrCodeConvergence = "CONVERGENCE_FAILURE"
	ErrCodeDegenerate  = "POLICY_NEVER_DECIDES"
)

// SolveReport is the payload of a successful solve run.
type SolveReport struct {
	Scenario string  `json:"scenario"`
	Grid     int     `json:"grid"`
	Sweeps   int     `json:"sweeps"`
	Residual float64 `json:"residual"`
	Beta     float64 `json:"beta"`
	Alpha    float64 `json:"alpha"`
	Width    float64 `json:"width"`
	MaxValue float64 `json:"max_value"`
	ArgMax   float64 `json:"arg_max"` // belief where the value function peaks
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve <scenario.yaml>",
		Short: "Solve the value function and extract cutoffs",
		Long: `Solve the Bellman fixed point for a scenario and report the
decision cutoffs (beta, alpha) together with solver diagnostics.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSolve(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sc, err := LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	m, err := sc.Build()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to construct model", err)
	}

	slog.Debug("solving", "scenario", sc.Name, "grid", sc.Grid)
	if _, err := m.Solve(); err != nil {
		var convErr *solver.ConvergenceError
		if errors.As(err, &convErr) {
			_ = formatter.Error(ErrCodeConvergence, convErr.Error(), map[string]any{
				"sweeps":   convErr.Sweeps,
				"residual": convErr.Residual,
			})
			return WrapExitError(ExitFailure, "solver did not converge", err)
		}
		var degErr *policy.DegenerateError
		if errors.As(err, &degErr) {
			_ = formatter.Error(ErrCodeDegenerate, degErr.Error(), nil)
			return WrapExitError(ExitFailure, "degenerate policy", err)
		}
		return WrapExitError(ExitCommandError, "solve failed", err)
	}

	report, err := buildSolveReport(sc.Name, m)
	if err != nil {
		return WrapExitError(ExitFailure, "solve failed", err)
	}
	slog.Info("solved", "scenario", sc.Name, "sweeps", report.Sweeps,
		"beta", report.Beta, "alpha", report.Alpha)

	return formatter.Success(report, func(p *message.Printer, w io.Writer) {
		renderSolveText(p, w, report)
	})
}

func buildSolveReport(name string, m *model.Model) (SolveReport, error) {
	res, err := m.Result()
	if err != nil {
		return SolveReport{}, err
	}
	cut, err := m.Cutoffs()
	if err != nil {
		return SolveReport{}, err
	}

	report := SolveReport{
		Scenario: name,
		Grid:     m.Grid().Len(),
		Sweeps:   res.Sweeps,
		Residual: res.Residual,
		Beta:     cut.Beta,
		Alpha:    cut.Alpha,
		Width:    cut.Width(),
	}
	for i, v := range res.Values {
		if v > report.MaxValue {
			report.MaxValue = v
			report.ArgMax = m.Grid().At(i)
		}
	}
	return report, nil
}

// renderSolveText writes the human-readable solve report. The residual
// is preformatted: scientific notation should look the same in every
// locale the printer might be configured for.
func renderSolveText(p *message.Printer, w io.Writer, r SolveReport) {
	p.Fprintf(w, "Scenario: %s\n", r.Scenario)
	p.Fprintf(w, "Converged in %d sweeps (residual %s, grid %d)\n",
		r.Sweeps, fmt.Sprintf("%.2e", r.Residual), r.Grid)
	p.Fprintf(w, "Cutoffs:\n")
	p.Fprintf(w, "  beta  = %.4f  (accept H1 below)\n", r.Beta)
	p.Fprintf(w, "  alpha = %.4f  (accept H0 above)\n", r.Alpha)
	p.Fprintf(w, "  continuation band width = %.4f\n", r.Width)
	p.Fprintf(w, "Value function peak: %.4f at belief %.3f\n", r.MaxValue, r.ArgMax)
}
