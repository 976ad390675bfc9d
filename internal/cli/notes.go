package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkessler/runlab/internal/notes"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Query and write the research notes graph",
	Long: `Talk to the configured notes graph. Requires notes.graph and
notes.token in the config (the token is usually injected via
${ROAM_API_TOKEN}).`,
}

var notesQueryCmd = &cobra.Command{
	Use:   "query <datalog> [args...]",
	Short: "Run a datalog query against the graph",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNotesQuery,
}

var notesAppendCmd = &cobra.Command{
	Use:   "append <parent-uid> <text>",
	Short: "Append a block under a parent block",
	Args:  cobra.ExactArgs(2),
	RunE:  runNotesAppend,
}

func init() {
	notesCmd.AddCommand(notesQueryCmd)
	notesCmd.AddCommand(notesAppendCmd)
	rootCmd.AddCommand(notesCmd)
}

func notesClient() (*notes.Client, error) {
	cfg := loadConfig()
	if cfg.Notes.Graph == "" || cfg.Notes.Token == "" {
		return nil, fmt.Errorf("notes.graph and notes.token must be configured")
	}
	return notes.NewClient(cfg.Notes.Token, cfg.Notes.Graph), nil
}

func runNotesQuery(cmd *cobra.Command, args []string) error {
	client, err := notesClient()
	if err != nil {
		return err
	}

	result, err := client.Query(cmd.Context(), args[0], args[1:]...)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if jsonOut {
		fmt.Println(string(result))
		return nil
	}

	var pretty any
	if err := json.Unmarshal(result, &pretty); err != nil {
		fmt.Println(string(result))
		return nil
	}
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runNotesAppend(cmd *cobra.Command, args []string) error {
	client, err := notesClient()
	if err != nil {
		return err
	}

	loc := notes.BlockLocation{ParentUID: args[0], Order: "last"}
	if err := client.CreateBlock(cmd.Context(), loc, notes.Block{String: args[1]}); err != nil {
		return fmt.Errorf("append failed: %w", err)
	}

	fmt.Printf("Appended block under %s\n", args[0])
	return nil
}
