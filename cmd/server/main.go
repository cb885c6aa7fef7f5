// server runs the billing HTTP API. It is equivalent to `billing serve`.
//
// Usage: go run ./cmd/server
package main

import (
	"fmt"
	"os"

	"agency-billing/internal/adapters/cli"
	ierr "agency-billing/internal/errors"
)

func main() {
	root := cli.NewRootCommand()
	root.SetArgs(append([]string{"serve"}, os.Args[1:]...))
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %s\n", ierr.DisplayMessage(err, err.Error()))
		os.Exit(1)
	}
}
