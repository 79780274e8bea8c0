// Package cmd implements the CLI application to project equity compensation
// taxes and pledge obligations.
package cmd

import (
	"fmt"
	"os"

	"github.com/etnz/equitysim"
	"github.com/google/subcommands"
)

// Commands lists every subcommand of the application. A main package
// registers them all and executes the user-selected one.
var Commands = []subcommands.Command{
	&projectCmd{},
	&checkCmd{},
	&exportCmd{},
	&topicCmd{},
	&assistCmd{},
}

// loadScenario reads the scenario given by flag, with a friendly error on the
// common mistake of forgetting it.
func loadScenario(path string) (*equitysim.Scenario, error) {
	if path == "" {
		return nil, fmt.Errorf("no scenario file, pass -scenario <file.yaml>")
	}
	return equitysim.LoadScenario(path)
}

// fail prints the error and converts it to the exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
