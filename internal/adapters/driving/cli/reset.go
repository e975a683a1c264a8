package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetIndex bool

var resetCmd = pipelineCommand(&cobra.Command{
	Use:   "reset",
	Short: "Remove the prepared document",
	Long: `Deletes every vector from the index and forgets the prepared chunks.

With --index the index itself is dropped. Use this after changing the
embedding provider, model or dimensions; the next prepare recreates it.`,
	Args: cobra.NoArgs,
	RunE: runReset,
})

func init() {
	resetCmd.Flags().BoolVar(&resetIndex, "index", false, "drop the vector index, not only its contents")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	rag, err := requireRAG()
	if err != nil {
		return err
	}

	if resetIndex {
		if err := rag.DeleteIndex(cmd.Context()); err != nil {
			return fmt.Errorf("delete index failed: %w", err)
		}
		cmd.Println("Index deleted.")
		return nil
	}

	if err := rag.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	cmd.Println("Index cleared.")
	return nil
}
