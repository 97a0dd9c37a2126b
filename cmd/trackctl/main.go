// Package main is the entry point for the trackctl CLI tool.
package main

import (
	"os"

	"github.com/good-yellow-bee/feattrack/cmd/trackctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
