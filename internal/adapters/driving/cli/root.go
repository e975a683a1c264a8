// Package cli provides the docqa command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// stdout receives command output. cobra's Print helpers default to stderr.
var stdout io.Writer = os.Stdout

// annotationPipeline marks commands that need the full question-answering
// pipeline rather than just settings.
const annotationPipeline = "docqa/pipeline"

// Global flags.
var (
	verbose   bool
	configDir string
	ephemeral bool
)

// Services used by the commands. Set by the bootstrap function or by tests.
var (
	ragService      driving.RAGService
	evaluator       driving.Evaluator
	settingsService driving.SettingsService
	checkEmbedding  func(*domain.EmbeddingSettings) error
	checkLLM        func(*domain.LLMSettings) error
	closeServices   func()
)

// Options carries the global flags to the bootstrap function.
type Options struct {
	// ConfigDir overrides the configuration directory. Empty means the default.
	ConfigDir string

	// Ephemeral keeps the index in memory for this invocation.
	Ephemeral bool

	// Pipeline is true when the command needs RAG and Evaluator.
	Pipeline bool
}

// Services are the dependencies built by the bootstrap function.
type Services struct {
	RAG       driving.RAGService
	Evaluator driving.Evaluator
	Settings  driving.SettingsService

	// CheckEmbedding and CheckLLM ping the configured providers.
	CheckEmbedding func(*domain.EmbeddingSettings) error
	CheckLLM       func(*domain.LLMSettings) error

	// Close releases resources after the command has run.
	Close func()
}

// BootstrapFunc builds the services for a command.
type BootstrapFunc func(opts Options) (*Services, error)

var bootstrap BootstrapFunc

// SetBootstrap registers the function that wires the services. It runs
// once per command invocation, after flags are parsed.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

func setServices(s *Services) {
	ragService = s.RAG
	evaluator = s.Evaluator
	settingsService = s.Settings
	checkEmbedding = s.CheckEmbedding
	checkLLM = s.CheckLLM
	closeServices = s.Close
}

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about a document",
	Long: `docqa answers questions about a single document using retrieval
augmented generation.

A document is prepared once: its text is extracted, split into chunks,
embedded and stored in a vector index. Questions are then answered by
retrieving the most relevant chunks and passing them to a language model.

Typical use:
  docqa prepare report.pdf
  docqa ask "What was the revenue in 2023?"
  docqa chat`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		releaseServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.docqa)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the index in memory for this run")
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || cmd == versionCmd {
		return nil
	}

	_, needsPipeline := cmd.Annotations[annotationPipeline]
	services, err := bootstrap(Options{
		ConfigDir: configDir,
		Ephemeral: ephemeral,
		Pipeline:  needsPipeline,
	})
	if err != nil {
		return err
	}
	setServices(services)
	return nil
}

// releaseServices closes whatever the bootstrap function opened.
func releaseServices() {
	if closeServices != nil {
		closeServices()
		closeServices = nil
	}
}

// pipelineCommand marks cmd as needing the question-answering pipeline.
func pipelineCommand(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationPipeline] = "true"
	return cmd
}

// requireRAG returns the configured RAG service or an error.
func requireRAG() (driving.RAGService, error) {
	if ragService == nil {
		return nil, errors.New("rag service not configured")
	}
	return ragService, nil
}

// restore loads the previously prepared document when nothing is loaded yet.
func restore(ctx context.Context, rag driving.RAGService) error {
	if rag.State().CanQuery() {
		return nil
	}
	if err := rag.Restore(ctx); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: no document prepared, run 'docqa prepare <file>' first", domain.ErrNotReady)
		}
		return fmt.Errorf("restore prepared document: %w", err)
	}
	return nil
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// PersistentPostRun is skipped when a command fails.
	defer releaseServices()
	rootCmd.SetOut(stdout)
	return rootCmd.ExecuteContext(ctx)
}
