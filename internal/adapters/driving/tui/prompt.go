package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

// ErrPromptCancelled is returned when the user leaves the prompt without answering.
var ErrPromptCancelled = errors.New("tui: prompt cancelled")

// promptModel reads a single question inline, without the alt screen.
type promptModel struct {
	input     *input.QuestionInput
	question  string
	cancelled bool
}

func (m *promptModel) Init() tea.Cmd {
	return m.input.Init()
}

func (m *promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch key.Type {
		case tea.KeyEnter:
			if q := m.input.Question(); q != "" {
				m.question = q
				return m, tea.Quit
			}
			return m, nil
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *promptModel) View() string {
	if m.question != "" || m.cancelled {
		return ""
	}
	return m.input.View() + "\n"
}

func newPromptInput() *input.QuestionInput {
	return input.NewQuestionInput(styles.DefaultStyles())
}

// PromptQuestion asks for one question on the terminal and returns it.
func PromptQuestion(ctx context.Context) (string, error) {
	m := &promptModel{input: newPromptInput()}

	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return "", err
	}
	result, ok := final.(*promptModel)
	if !ok || result.cancelled || result.question == "" {
		return "", ErrPromptCancelled
	}
	return result.question, nil
}
