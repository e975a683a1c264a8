package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswer builds the generation prompt for a question.
	// The template expects two %s placeholders: the retrieved context,
	// then the question.
	PromptAnswer = "answer"
)

// DefaultAnswerPrompt is the built-in PromptAnswer template. The first %s
// receives the retrieved chunk texts, the second the question.
const DefaultAnswerPrompt = "Here is some relevant information extracted from documents:\n%s\n\n" +
	"Based on this information, answer the following question:\n%s"
