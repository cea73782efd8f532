// Package main is the entry point for the kakha CLI.
package main

import (
	"os"

	"github.com/f3rmion/kakha/cmd/kakha/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
