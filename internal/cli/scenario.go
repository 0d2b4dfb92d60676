package cli

import (
	"fmt"

	"github.com/roach88/sequent/internal/dist"
	"github.com/roach88/sequent/internal/model"
)

// Scenario is the YAML surface of one model parameterization.
//
// The two hypothesis distributions come either as raw weight vectors
// over a shared support or as Beta densities discretized onto a
// `support`-point grid; exactly one of the two forms must be present.
type Scenario struct {
	// Name identifies the scenario in reports and golden files.
	Name string `yaml:"name"`

	// Description explains what the parameterization represents.
	Description string `yaml:"description,omitempty"`

	// Cost is the per-observation sampling cost (> 0).
	Cost float64 `yaml:"cost"`

	// Loss0 is the loss for wrongly accepting hypothesis 0; Loss1 for
	// wrongly accepting hypothesis 1.
	Loss0 float64 `yaml:"loss0"`
	Loss1 float64 `yaml:"loss1"`

	// Grid is the belief-grid resolution m.
	Grid int `yaml:"grid"`

	// Distributions names the two hypothesis pmfs.
	Distributions Distributions `yaml:"distributions"`

	// Solver overrides the value-iteration controls.
	Solver SolverParams `yaml:"solver,omitempty"`

	// Simulation sets the defaults for simulate/sweep runs.
	Simulation SimParams `yaml:"simulation,omitempty"`
}

// Distributions selects the observation model's two pmfs.
type Distributions struct {
	// Support is the number of observation support points K.
	// Required with the beta form; ignored with raw weights.
	Support int `yaml:"support,omitempty"`

	// Beta0 and Beta1 specify parametric densities to discretize.
	Beta0 *BetaParams `yaml:"beta0,omitempty"`
	Beta1 *BetaParams `yaml:"beta1,omitempty"`

	// Weights0 and Weights1 are raw non-negative weights.
	Weights0 []float64 `yaml:"weights0,omitempty"`
	Weights1 []float64 `yaml:"weights1,omitempty"`
}

// BetaParams are the shape parameters of a Beta density.
type BetaParams struct {
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
}

// SolverParams are the optional value-iteration controls.
type SolverParams struct {
	Tol       float64 `yaml:"tol,omitempty"`
	MaxSweeps int     `yaml:"max_sweeps,omitempty"`
}

// SimParams are the optional simulation defaults.
type SimParams struct {
	Prior    float64 `yaml:"prior,omitempty"`
	MaxDraws int     `yaml:"max_draws,omitempty"`
	Runs     int     `yaml:"runs,omitempty"`
	Seed     uint64  `yaml:"seed,omitempty"`
}

// weights resolves the distribution section into two raw weight vectors.
func (d Distributions) weights() (w0, w1 []float64, err error) {
	raw := len(d.Weights0) > 0 || len(d.Weights1) > 0
	parametric := d.Beta0 != nil || d.Beta1 != nil

	switch {
	case raw && parametric:
		return nil, nil, fmt.Errorf("distributions: raw weights and beta parameters are mutually exclusive")
	case raw:
		if len(d.Weights0) == 0 || len(d.Weights1) == 0 {
			return nil, nil, fmt.Errorf("distributions: both weights0 and weights1 are required")
		}
		return d.Weights0, d.Weights1, nil
	case parametric:
		if d.Beta0 == nil || d.Beta1 == nil {
			return nil, nil, fmt.Errorf("distributions: both beta0 and beta1 are required")
		}
		if d.Support < 2 {
			return nil, nil, fmt.Errorf("distributions: beta form needs support >= 2, got %d", d.Support)
		}
		w0, err = dist.BetaWeights(d.Support, d.Beta0.Alpha, d.Beta0.Beta)
		if err != nil {
			return nil, nil, err
		}
		w1, err = dist.BetaWeights(d.Support, d.Beta1.Alpha, d.Beta1.Beta)
		if err != nil {
			return nil, nil, err
		}
		return w0, w1, nil
	}
	return nil, nil, fmt.Errorf("distributions: specify either weights0/weights1 or beta0/beta1 with support")
}

// ToConfig converts the scenario into a model configuration.
func (s *Scenario) ToConfig() (model.Config, error) {
	w0, w1, err := s.Distributions.weights()
	if err != nil {
		return model.Config{}, err
	}
	return model.Config{
		Cost:      s.Cost,
		Loss0:     s.Loss0,
		Loss1:     s.Loss1,
		Weights0:  w0,
		Weights1:  w1,
		GridSize:  s.Grid,
		Tol:       s.Solver.Tol,
		MaxSweeps: s.Solver.MaxSweeps,
		MaxDraws:  s.Simulation.MaxDraws,
		Prior:     s.Simulation.Prior,
	}, nil
}

// Build constructs the model for this scenario.
func (s *Scenario) Build() (*model.Model, error) {
	cfg, err := s.ToConfig()
	if err != nil {
		return nil, err
	}
	return model.New(cfg)
}
