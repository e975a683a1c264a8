package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var retrieveTopK int

var retrieveCmd = pipelineCommand(&cobra.Command{
	Use:   "retrieve <question>",
	Short: "Show the chunks most relevant to a question",
	Long: `Retrieves the chunks of the prepared document that are most similar to
the question, without calling the language model.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
})

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveTopK, "top-k", "k", 0, "number of chunks to retrieve (0 = configured default)")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	rag, err := requireRAG()
	if err != nil {
		return err
	}

	question, err := readQuestion(cmd, args)
	if err != nil {
		return err
	}

	if err := restore(cmd.Context(), rag); err != nil {
		return err
	}

	chunks, matches, err := rag.Retrieve(cmd.Context(), question, retrieveTopK)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if len(chunks) == 0 {
		cmd.Println("No relevant chunks found.")
		return nil
	}

	for i, chunk := range chunks {
		cmd.Printf("[%d] Chunk %d (%.3f)\n", i+1, chunk.Position, matches[i].Score)
		cmd.Printf("    %s\n\n", indentLines(chunk.Content, "    "))
	}
	return nil
}
