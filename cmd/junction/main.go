// Package main provides the entry point for the junction CLI.
package main

import (
	"errors"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		if !errors.Is(err, errSilentFailure) {
			printError(err)
		}
		os.Exit(1)
	}
}
