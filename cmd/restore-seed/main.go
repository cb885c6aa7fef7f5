// restore-seed is a one-shot tool that restores the demo business profile and
// clients. It is equivalent to `billing seed` and never overwrites existing data.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"fmt"
	"os"

	"agency-billing/internal/adapters/cli"
	ierr "agency-billing/internal/errors"
)

func main() {
	root := cli.NewRootCommand()
	root.SetArgs([]string{"seed"})
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "restore-seed: %s\n", ierr.DisplayMessage(err, err.Error()))
		os.Exit(1)
	}
}
