package cli

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRenderSolveText_Golden(t *testing.T) {
	report := SolveReport{
		Scenario: "demo",
		Grid:     201,
		Sweeps:   137,
		Residual: 8.6e-9,
		Beta:     0.1873,
		Alpha:    0.8127,
		Width:    0.6254,
		MaxValue: 1.9342,
		ArgMax:   0.5,
	}

	var buf bytes.Buffer
	renderSolveText(message.NewPrinter(language.English), &buf, report)
	newGoldie(t).Assert(t, "solve_report", buf.Bytes())
}

func TestRenderSimulateText_Golden(t *testing.T) {
	report := SimulateReport{
		Scenario:    "demo",
		BatchID:     "0190a6f2-7cba-7def-8001-3b2a1c4d5e6f",
		Truth:       "H0",
		Runs:        250,
		Seed:        42,
		MeanDraws:   6.25,
		StdDevDraws: 2.5,
		MedianDraws: 6.0,
		P90Draws:    10.0,
		MaxDraws:    14,
		CorrectRate: 0.956,
	}

	var buf bytes.Buffer
	renderSimulateText(message.NewPrinter(language.English), &buf, report)
	newGoldie(t).Assert(t, "simulate_report", buf.Bytes())
}

func TestRenderSweepText_Golden(t *testing.T) {
	report := SweepReport{
		Scenario: "demo",
		Truth:    "H0",
		Runs:     250,
		Points: []SweepPoint{
			{Cost: 0.5, Beta: 0.2, Alpha: 0.8, Width: 0.6, MeanDraws: 8.4, CorrectRate: 0.94},
			{Cost: 1.0, Beta: 0.3, Alpha: 0.7, Width: 0.4, MeanDraws: 5.12, CorrectRate: 0.9},
		},
	}

	var buf bytes.Buffer
	renderSweepText(message.NewPrinter(language.English), &buf, report)
	newGoldie(t).Assert(t, "sweep_report", buf.Bytes())
}
