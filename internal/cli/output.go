package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// encode serializes v as JSON or YAML.
func encode(v any, format string, pretty bool) ([]byte, error) {
	switch format {
	case "json":
		if pretty {
			return json.MarshalIndent(v, "", "  ")
		}
		return json.Marshal(v)
	case "yaml":
		return yaml.Marshal(v)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty.
func writeOutput(cmd *cobra.Command, path string, data []byte, what string) error {
	if path == "" {
		out := cmd.OutOrStdout()
		if _, err := out.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			fmt.Fprintln(out)
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s written: %s\n", what, path)
	return nil
}

// checkInput fails early with a readable message for a missing input file.
func checkInput(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}
	return nil
}
