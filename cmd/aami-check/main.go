package main

import (
	"fmt"
	"os"

	"github.com/fregataa/aami-check-runner/cmd/aami-check/commands"
	"github.com/fregataa/aami-check-runner/cmd/aami-check/internal/clierr"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(clierr.ExitCodeOf(err))
	}
}
