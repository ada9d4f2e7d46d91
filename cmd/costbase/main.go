// Package main is the costbase CLI entry point.
package main

import (
	"os"

	"github.com/costbase/costbase/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
