package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/equitysim/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion wires shell completion for the subcommands and their common
// flags. Complete returns immediately when no completion is requested.
func completion() {
	scenario := map[string]complete.Predictor{
		"scenario": predict.Files("*.yaml"),
	}
	c := &complete.Command{
		Sub: map[string]*complete.Command{
			"project": {Flags: scenario},
			"check":   {Flags: scenario},
			"export":  {Flags: scenario},
			"topic":   {},
			"assist":  {Flags: scenario},
		},
	}
	c.Complete("eqsim")
}

func main() {
	completion()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
