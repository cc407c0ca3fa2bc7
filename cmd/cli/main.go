// Package main is the entry point for the inventory-valuation CLI.
package main

import (
	"os"

	"inventory-valuation/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
