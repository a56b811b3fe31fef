// Command budgetctl runs the budget engine over a TOML household snapshot
// without a database.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
