package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// main is the entry point for slotguard, the storage layout linter for
// upgradeable Solidity contracts.
func main() {
	// Load .env if present; missing files are fine.
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
