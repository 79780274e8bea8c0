package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type checkCmd struct {
	scenario string
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "run a scenario and verify its expectations" }
func (*checkCmd) Usage() string {
	return `eqsim check -scenario <file.yaml>

  Runs the scenario and evaluates every expectation it declares, each a
  jsonpath into the projection result with a wanted value. Fails when any
  expectation does not hold.

Usage Examples:
$ eqsim check -scenario plan.yaml

`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.scenario, "scenario", "", "Scenario file (.yaml or .json)")
}

func (c *checkCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := loadScenario(c.scenario)
	if err != nil {
		return fail(err)
	}
	if len(s.Expectations) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: scenario declares no expectations.")
	}
	r, err := s.Run()
	if err != nil {
		return fail(err)
	}

	failures := s.CheckAll(r)
	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "FAIL %v\n", f)
	}
	if len(failures) > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d expectations failed.\n", len(failures), len(s.Expectations))
		return subcommands.ExitFailure
	}
	fmt.Printf("✅ %d expectations hold.\n", len(s.Expectations))
	return subcommands.ExitSuccess
}
