// Command chillerctl imports rating tables into the chiller catalog and runs
// selections against it from the terminal.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
