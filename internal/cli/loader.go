package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

// Error codes surfaced by scenario loading.
const (
	ErrCodeNotFound      = "SCENARIO_NOT_FOUND"
	ErrCodeParse         = "SCENARIO_PARSE"
	ErrCodeSchema        = "SCHEMA_VIOLATION"
	ErrCodeDistributions = "DISTRIBUTIONS_INVALID"
)

// scenarioSchema is the CUE contract every scenario file must satisfy.
// Structural constraints (types, ranges, closedness) live here; the
// either-weights-or-beta exclusivity is checked in Go after decoding,
// where the error message can be clearer than a disjunction failure.
const scenarioSchema = `
#Beta: {
	alpha: number & >0
	beta:  number & >0
}

#Scenario: {
	name:         string & !=""
	description?: string
	cost:         number & >0
	loss0:        number & >=0
	loss1:        number & >=0
	grid:         int & >=2
	distributions: {
		support?:  int & >=2
		beta0?:    #Beta
		beta1?:    #Beta
		weights0?: [...number & >=0]
		weights1?: [...number & >=0]
	}
	solver?: {
		tol?:        number & >0
		max_sweeps?: int & >0
	}
	simulation?: {
		prior?:     number & >=0 & <=1
		max_draws?: int & >0
		runs?:      int & >0
		seed?:      int & >=0
	}
}
`

// LoadError is a positioned scenario-loading failure.
type LoadError struct {
	Code    string
	Message string
	Path    string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadScenario reads a scenario YAML file, validates it against the
// embedded CUE schema, and decodes it.
//
// Validation happens before decoding: the YAML is lifted into CUE,
// unified with the closed #Scenario definition, and checked for
// concreteness, so typos, wrong types, out-of-range values, and unknown
// fields are all rejected with file positions before any Go struct
// exists.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: "scenario file not found", Path: path}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error(), Path: path}
	}

	if err := validateAgainstSchema(path, data); err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: err.Error(), Path: path}
	}

	// Cross-field checks the schema leaves to Go.
	if _, _, err := sc.Distributions.weights(); err != nil {
		return nil, &LoadError{Code: ErrCodeDistributions, Message: err.Error(), Path: path}
	}
	return &sc, nil
}

// validateAgainstSchema unifies the YAML document with #Scenario.
func validateAgainstSchema(path string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(scenarioSchema).LookupPath(cue.ParsePath("#Scenario"))
	if err := schema.Err(); err != nil {
		// The schema is a compile-time constant; failing to build it is
		// a programming error, not a user error.
		panic(fmt.Sprintf("cli: scenario schema does not compile: %v", err))
	}

	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return &LoadError{Code: ErrCodeParse, Message: err.Error(), Path: path}
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return &LoadError{Code: ErrCodeParse, Message: cueerrors.Details(err, nil), Path: path}
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &LoadError{Code: ErrCodeSchema, Message: cueerrors.Details(err, nil), Path: path}
	}
	return nil
}
