package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkessler/runlab/internal/fileio"
	"github.com/dkessler/runlab/internal/schema"
)

var schemaName string

var validateCmd = &cobra.Command{
	Use:   "validate <config-file>",
	Short: "Check a run config against a schema",
	Long: `Load a config file (any format fileio understands) and report every
key the named schema finds missing or invalid. All problems are listed
in one pass rather than failing on the first.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&schemaName, "schema", "uses_metrics", "schema to check against")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]

	s := schema.ForName(schemaName)
	if s == nil {
		return fmt.Errorf("unknown schema %q", schemaName)
	}

	var cfg map[string]any
	if err := fileio.Load(path, &cfg); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	bad := s.Check(cfg)
	if len(bad) == 0 {
		fmt.Printf("%s: OK (schema %s)\n", path, schemaName)
		return nil
	}

	fmt.Printf("%s: %d problem(s) against schema %s\n", path, len(bad), schemaName)
	for _, key := range bad {
		fmt.Printf("  missing or invalid: %s\n", key)
	}

	return fmt.Errorf("validation failed")
}
