// Command clartest runs contract tests against a simulated chain.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/clartest/internal/cli"
	_ "github.com/roach88/clartest/internal/scenarios"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
