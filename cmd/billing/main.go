package main

import "agency-billing/internal/adapters/cli"

func main() {
	cli.Execute()
}
