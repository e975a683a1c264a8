package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	askReference string
	askTopK      int
	askMetrics   []string
	askShowChunk bool
)

// isTerminal reports whether stdin is an interactive terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// promptQuestion reads a question interactively.
var promptQuestion = tui.PromptQuestion

var askCmd = pipelineCommand(&cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the prepared document",
	Long: `Answers a question using the chunks of the prepared document that are
most relevant to it.

Without an argument the question is read from the terminal, or from the
first line of standard input when it is not a terminal.

With --reference the answer is scored against a reference answer using
BLEU and ROUGE.`,
	RunE: runAsk,
})

func init() {
	askCmd.Flags().StringVarP(&askReference, "reference", "r", "", "reference answer to score against")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (0 = configured default)")
	askCmd.Flags().StringSliceVar(&askMetrics, "metrics", nil, "evaluation metrics (bleu, rouge, rouge1, rouge2, rougeL)")
	askCmd.Flags().BoolVar(&askShowChunk, "chunks", true, "print the retrieved chunks")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	answer, err := rag.Query(cmd.Context(), question, domain.QueryOptions{
		TopK:      askTopK,
		Reference: askReference,
		Metrics:   askMetrics,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	printAnswer(cmd, answer, askShowChunk)
	return nil
}

// readQuestion takes the question from args, an interactive prompt or stdin.
func readQuestion(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		q := strings.TrimSpace(strings.Join(args, " "))
		if q == "" {
			return "", fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
		}
		return q, nil
	}

	if cmd.InOrStdin() == os.Stdin && isTerminal() {
		return promptQuestion(cmd.Context())
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read question: %w", err)
	}
	q := strings.TrimSpace(line)
	if q == "" {
		return "", fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	return q, nil
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer, showChunks bool) {
	cmd.Println(answer.Text)

	if showChunks && len(answer.Chunks) > 0 {
		cmd.Println()
		cmd.Println("Retrieved chunks:")
		for i, chunk := range answer.Chunks {
			if i < len(answer.Matches) {
				cmd.Printf("  Chunk %d (%.3f):\n", chunk.Position, answer.Matches[i].Score)
			} else {
				cmd.Printf("  Chunk %d:\n", chunk.Position)
			}
			cmd.Printf("    %s\n", indentLines(chunk.Content, "    "))
		}
	}

	if len(answer.Evaluation) > 0 {
		cmd.Println()
		cmd.Println("Evaluation:")
		printScores(cmd, answer.Evaluation)
	}
}

func printScores(cmd *cobra.Command, scores domain.EvaluationResult) {
	for _, name := range scores.Names() {
		cmd.Printf("  %-7s %.4f\n", name+":", scores[name])
	}
}

// indentLines prefixes every line after the first with prefix.
func indentLines(text, prefix string) string {
	return strings.ReplaceAll(text, "\n", "\n"+prefix)
}
