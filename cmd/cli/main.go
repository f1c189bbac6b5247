// Package main is the entry point for the regdoc CLI.
// The CLI is the developer terminal tool for interacting with the regdoc API.
package main

import (
	"os"

	"regdoc/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
