package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/vendor-intake/internal/intake"
	"github.com/sells-group/vendor-intake/internal/reconcile"
)

// writeOutput renders v as "json" (indented) or "yaml".
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "encode json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "close yaml encoder")
	default:
		return eris.Errorf("unsupported output format %q (want json or yaml)", format)
	}
}

// expectedFlag returns nil when --expected was not given, and rejects
// non-positive values up front.
func expectedFlag(cmd *cobra.Command, n int) (*int, error) {
	if !cmd.Flags().Changed("expected") {
		return nil, nil
	}
	if err := reconcile.Validate(&n); err != nil {
		return nil, err
	}
	return &n, nil
}

// failedFiles returns an error naming how many files could not be parsed.
func failedFiles(results []intake.FileResult) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return eris.Errorf("%d of %d files failed", failed, len(results))
}
