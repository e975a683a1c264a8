package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	chatTopK      int
	chatReference string
)

// runApp starts the TUI. Replaced in tests.
var runApp = func(app *tui.App) error {
	return app.Run()
}

var chatCmd = pipelineCommand(&cobra.Command{
	Use:   "chat",
	Short: "Ask questions in an interactive terminal UI",
	Long: `Launch the interactive terminal user interface for asking questions
about the prepared document.

Controls:
  Enter    - Ask / Expand chunk
  ↑/k, ↓/j - Navigate retrieved chunks
  n        - New question
  Esc      - Back
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
})

func init() {
	chatCmd.Flags().IntVarP(&chatTopK, "top-k", "k", 0, "number of chunks to retrieve (0 = configured default)")
	chatCmd.Flags().StringVarP(&chatReference, "reference", "r", "", "reference answer to score every answer against")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	rag, err := requireRAG()
	if err != nil {
		return err
	}
	if err := restore(cmd.Context(), rag); err != nil {
		return err
	}

	ports := tui.NewPorts(rag)
	ports.Options = domain.QueryOptions{TopK: chatTopK, Reference: chatReference}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
