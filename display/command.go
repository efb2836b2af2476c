// Package display formats CLI command output.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// CompactEnv switches JSON output to a single line (for piping into other tools)
const CompactEnv = "RECIPEVIZ_COMPACT_JSON"

// ShouldOutputJSON reports whether the command was asked for JSON, via its
// own --json flag or a persistent one on the root
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}

	if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
		on, _ := cmd.Flags().GetBool("json")
		return on
	}
	if f := cmd.Root().PersistentFlags().Lookup("json"); f != nil {
		on, _ := cmd.Root().PersistentFlags().GetBool("json")
		return on
	}
	return false
}

// MarshalJSON indents for humans unless CompactEnv is set
func MarshalJSON(v interface{}) ([]byte, error) {
	if os.Getenv(CompactEnv) != "" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}

// WriteJSON marshals v with MarshalJSON and writes it followed by a newline
func WriteJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// OutputJSON writes v to stdout
func OutputJSON(v interface{}) error {
	return WriteJSON(os.Stdout, v)
}
