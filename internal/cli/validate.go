package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"
)

// ValidationReport is the payload of a successful validate run.
type ValidationReport struct {
	Scenario string `json:"scenario"`
	Support  int    `json:"support"`
	Grid     int    `json:"grid"`
	Valid    bool   `json:"valid"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario file without solving",
		Long: `Validate a scenario file against the embedded schema.

Checks types, ranges, unknown fields, and the distribution section's
consistency without running the solver. Faster feedback than solve when
editing scenario files.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sc, err := LoadScenario(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, loadErr.Path)
			return WrapExitError(ExitCommandError, "scenario invalid", err)
		}
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	// Resolving the distributions exercises the same path solve will use.
	w0, _, err := sc.Distributions.weights()
	if err != nil {
		_ = formatter.Error(ErrCodeDistributions, err.Error(), path)
		return WrapExitError(ExitCommandError, "scenario invalid", err)
	}

	report := ValidationReport{
		Scenario: sc.Name,
		Support:  len(w0),
		Grid:     sc.Grid,
		Valid:    true,
	}
	return formatter.Success(report, func(p *message.Printer, w io.Writer) {
		p.Fprintf(w, "Scenario %q is valid\n", report.Scenario)
		p.Fprintf(w, "  support points: %d\n", report.Support)
		p.Fprintf(w, "  grid resolution: %d\n", report.Grid)
	})
}
