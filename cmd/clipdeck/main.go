// Package main is the entry point for the clipdeck application.
package main

import (
	"os"

	"github.com/clipdeck/clipdeck/cmd/clipdeck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
