// ABOUTME: Entry point for the pestr CLI
// ABOUTME: Command-line tool for parallel job reservation geometry

package main

import (
	"fmt"
	"os"

	"github.com/hpcutil/pestr/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
