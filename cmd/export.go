package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/equitysim"
	"github.com/google/subcommands"
)

type exportCmd struct {
	scenario string
	kind     string
	output   string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export projection tables as CSV" }
func (*exportCmd) Usage() string {
	return `eqsim export -scenario <file.yaml> [-kind annual|pledge|carryforward] [-o <file.csv>]

  Runs the scenario and writes one of its result tables as CSV:
    annual        year-by-year tax detail (default)
    pledge        pledge obligations as of the final year
    carryforward  charitable carryforward buckets per year

Usage Examples:
$ eqsim export -scenario plan.yaml -kind annual -o taxes.csv

`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.scenario, "scenario", "", "Scenario file (.yaml or .json)")
	f.StringVar(&c.kind, "kind", "annual", "Table to export: annual, pledge or carryforward")
	f.StringVar(&c.output, "o", "", "Output file, stdout by default")
}

func (c *exportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := loadScenario(c.scenario)
	if err != nil {
		return fail(err)
	}
	r, err := s.Run()
	if err != nil {
		return fail(err)
	}

	var w io.Writer = os.Stdout
	if c.output != "" {
		f, err := os.Create(c.output)
		if err != nil {
			return fail(err)
		}
		defer f.Close()
		w = f
	}

	switch c.kind {
	case "annual":
		err = equitysim.WriteAnnualCSV(w, r)
	case "pledge":
		err = equitysim.WritePledgeCSV(w, r)
	case "carryforward":
		err = equitysim.WriteCarryforwardCSV(w, r)
	default:
		err = fmt.Errorf("unknown table %q, want annual, pledge or carryforward", c.kind)
	}
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
