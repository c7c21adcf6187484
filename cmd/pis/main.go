// Package main implements the py-import-scan CLI (pis).
// It provides commands for extracting imports from single Python files and
// for building import indexes across whole source trees.
package main

import (
	"fmt"
	"os"

	"github.com/l3aro/py-import-scan/cmd/pis/commands"
)

var (
	version   = "dev"
	buildTime = ""
)

func main() {
	commands.SetVersion(version, buildTime)
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
