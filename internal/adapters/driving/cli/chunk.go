package cli

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/connectors/filesystem"
)

var chunkCmd = pipelineCommand(&cobra.Command{
	Use:   "chunk <file>",
	Short: "Show how a document would be chunked",
	Long: `Extracts and chunks a document using the configured chunking settings
and prints the chunks. Nothing is embedded or indexed.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
})

func init() {
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	rag, err := requireRAG()
	if err != nil {
		return err
	}

	path, err := filesystem.ResolvePath(args[0])
	if err != nil {
		return err
	}

	doc, chunks, err := rag.Preview(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("chunk failed: %w", err)
	}

	cmd.Printf("%s: %d characters, %d chunks\n\n", doc.URI, utf8.RuneCountInString(doc.Content), len(chunks))
	for _, chunk := range chunks {
		cmd.Printf("Chunk %d (%d chars):\n", chunk.Position, utf8.RuneCountInString(chunk.Content))
		cmd.Printf("  %s\n\n", indentLines(chunk.Content, "  "))
	}
	return nil
}
