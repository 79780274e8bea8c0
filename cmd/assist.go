package cmd

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/etnz/equitysim/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type assistCmd struct {
	scenario string
}

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "start an interactive session with the AI planning assistant"
}
func (*assistCmd) Usage() string {
	return `eqsim assist [-scenario <file.yaml>] [initial question]

  Starts an interactive session with the AI assistant. The assistant can run
  the scenario, read the projection report, and explain the mechanics behind
  the numbers (AMT, pledge windows, charitable carryforward).
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.scenario, "scenario", "", "Scenario file the assistant works on")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	initialPrompt := ""
	if f.NArg() > 0 {
		initialPrompt = strings.Join(f.Args(), " ")
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return fail(err)
	}

	planner := agent.NewPlanner(c.scenario)
	librarian := agent.NewLibrarian()
	a := agent.New(os.Stdout, os.Stdin, planner, librarian)

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
