package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/connectors/filesystem"
)

var prepareCmd = pipelineCommand(&cobra.Command{
	Use:   "prepare <file>",
	Short: "Index a document for questions",
	Long: `Extracts the text of a document, splits it into chunks, embeds every
chunk and stores the vectors in the configured index.

Preparing replaces any previously prepared document. Supported formats
are PDF, Markdown, HTML and plain text.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrepare,
})

func init() {
	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	rag, err := requireRAG()
	if err != nil {
		return err
	}

	path, err := filesystem.ResolvePath(args[0])
	if err != nil {
		return err
	}

	report, err := rag.Prepare(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("prepare failed: %w", err)
	}

	cmd.Printf("Prepared %s\n", report.URI)
	cmd.Printf("  Characters: %d\n", report.Characters)
	cmd.Printf("  Chunks:     %d\n", report.Chunks)
	cmd.Printf("  Dimensions: %d\n", report.Dimensions)
	cmd.Printf("  Took:       %s\n", report.Duration.Round(time.Millisecond))
	return nil
}
