// Package main is the entry point for cityretail-etl.
package main

import (
	"fmt"
	"os"

	"github.com/cityretail/cityretail-etl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
