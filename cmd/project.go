package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/equitysim/renderer"
	"github.com/google/subcommands"
)

type projectCmd struct {
	scenario string
	year     int
	asJSON   bool
}

func (*projectCmd) Name() string     { return "project" }
func (*projectCmd) Synopsis() string { return "run a multi-year projection and print the report" }
func (*projectCmd) Usage() string {
	return `eqsim project -scenario <file.yaml> [-year <year>] [-json]

  Runs the scenario's plan against its profile, year by year, and prints the
  projection report: taxes per jurisdiction, AMT credit movement, charitable
  carryforward, pledge obligations and company match.

Usage Examples:
# Full multi-year report.
$ eqsim project -scenario plan.yaml

# Detail of a single year.
$ eqsim project -scenario plan.yaml -year 2026

`
}

func (c *projectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.scenario, "scenario", "", "Scenario file (.yaml or .json)")
	f.IntVar(&c.year, "year", 0, "Render the detail of a single year instead of the full report")
	f.BoolVar(&c.asJSON, "json", false, "Print the raw result as JSON instead of markdown")
}

func (c *projectCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := loadScenario(c.scenario)
	if err != nil {
		return fail(err)
	}
	r, err := s.Run()
	if err != nil {
		return fail(err)
	}

	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}

	if c.year != 0 {
		y := r.Year(c.year)
		if y == nil {
			return fail(fmt.Errorf("year %d is not part of the %d-%d projection", c.year, r.StartYear, r.EndYear))
		}
		printMarkdown(renderer.YearMarkdown(y))
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.ProjectionMarkdown(r, s.Profile))
	return subcommands.ExitSuccess
}
