package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	evalCandidate string
	evalReference string
	evalMetrics   []string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score an answer against a reference answer",
	Long: `Computes BLEU and ROUGE scores for a candidate answer against a
reference answer. No document or language model is needed.

Examples:
  docqa evaluate --candidate "the cat sat" --reference "the cat sat down"
  docqa evaluate -c "..." -r "..." --metrics bleu,rougeL`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&evalCandidate, "candidate", "c", "", "answer to score")
	evaluateCmd.Flags().StringVarP(&evalReference, "reference", "r", "", "reference answer")
	evaluateCmd.Flags().StringSliceVar(&evalMetrics, "metrics", nil, "metrics to compute (default bleu,rouge)")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	if evaluator == nil {
		return errors.New("evaluator not configured")
	}
	if evalCandidate == "" || evalReference == "" {
		return errors.New("both --candidate and --reference are required")
	}

	scores, err := evaluator.Evaluate(evalCandidate, evalReference, evalMetrics)
	if err != nil {
		return fmt.Errorf("evaluate failed: %w", err)
	}

	printScores(cmd, scores)
	return nil
}
