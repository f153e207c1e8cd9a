// Package main provides the spz CLI tool for converting Gaussian splat
// scenes between PLY and SPZ.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
