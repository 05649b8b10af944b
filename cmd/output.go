// ABOUTME: Output helpers for human, JSON, and YAML command results
// ABOUTME: Keeps machine-readable formats consistent across commands

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// writeOutput prints v as JSON or YAML when requested, else the human text
func writeOutput(w io.Writer, v any, human func() string) error {
	switch {
	case IsJSONOutput():
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case IsYAMLOutput():
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		fmt.Fprint(w, string(data))
	default:
		fmt.Fprintln(w, human())
	}
	return nil
}

// machineOutput reports whether a structured format was requested
func machineOutput() bool {
	return IsJSONOutput() || IsYAMLOutput()
}
