// Package main provides the critique CLI tool.
//
// Usage:
//
//	critique [flags] <command> [args]
//
// Commands:
//
//	analyze   - Label WAVE clips as non-negative or negative
//	features  - Print the feature vector of a clip
//	model     - Inspect, check and convert classifier artifacts
//	synth     - Write a rising test tone
//	config    - Manage profiles
//	version   - Show version information
//
// Configuration:
//
//	The CLI stores configuration in ~/.critique/config.yaml.
//	Use 'critique config' commands to manage profiles.
package main

import (
	"fmt"
	"os"

	"github.com/rahul24/CritiqueForTeams/cmd/critique/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
