package main

import (
	"github.com/driftwoodlabs/momentum/cmd"
)

// main is the entry point for the momentum CLI. All command-line parsing,
// configuration, and execution lives in the cmd package.
func main() {
	cmd.Execute()
}
