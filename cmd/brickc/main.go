// Command brickc compiles Brick relationship property declarations into a
// checked property graph.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ai4bd/brick/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// ExitErrors were already reported by the command.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
