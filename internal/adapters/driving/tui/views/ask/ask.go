// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// View holds the question input, the latest answer with its retrieved
// chunks, and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	chunks    *list.ChunkList
	statusbar *status.Bar

	rag  driving.RAGService
	opts domain.QueryOptions
	ctx  context.Context

	answer     *domain.Answer
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a question, false = reading the answer
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, rag driving.RAGService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		chunks:     list.NewChunkList(s),
		statusbar:  status.NewBar(s, km),
		rag:        rag,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
	v.refreshPipeline()
	return v
}

// WithContext sets the context used for questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithOptions sets the options applied to every question.
func (v *View) WithOptions(opts domain.QueryOptions) *View {
	v.opts = opts
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.QuestionSubmitted:
		return v, v.submit(msg.Question)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v, v.submit(v.input.Question())
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	// Answer mode
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.NewQuestion), keymap.Matches(k, v.keymap.Back):
		v.focusInput = true
		v.input.Reset()
		return v, v.input.Focus()
	case keymap.Matches(k, v.keymap.Help):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}
	case keymap.Matches(k, v.keymap.Quit):
		return v, func() tea.Msg {
			return messages.Quit{}
		}
	}

	v.chunks, _ = v.chunks.Update(msg)
	return v, nil
}

// submit starts answering question, ignoring blank input.
func (v *View) submit(question string) tea.Cmd {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil
	}
	v.err = nil
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")
	return v.performQuery(question)
}

// performQuery asks the question and returns the outcome as a message.
func (v *View) performQuery(question string) tea.Cmd {
	ctx := v.ctx
	opts := v.opts
	return func() tea.Msg {
		if v.rag == nil {
			return messages.ErrorOccurred{Err: ErrNoRAGService}
		}
		answer, err := v.rag.Query(ctx, question, opts)
		return messages.AnswerReceived{Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.answer = msg.Answer
	if msg.Answer != nil {
		v.chunks.SetChunks(msg.Answer.Chunks, msg.Answer.Matches)
	}
	v.refreshPipeline()
	v.statusbar.SetState(status.StateAnswered)
	if msg.Answer != nil {
		v.statusbar.SetMessage("answered in " + msg.Answer.Duration.Round(10*time.Millisecond).String())
	}
	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.focusInput = true
	v.input.Focus()
}

func (v *View) refreshPipeline() {
	if v.rag == nil {
		return
	}
	v.statusbar.SetPipeline(v.rag.State(), len(v.rag.Chunks()))
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("docqa"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.answer != nil {
		sections = append(sections, v.renderAnswer(), "", v.chunks.View())
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderAnswer() string {
	width := v.width - 4
	if width < 20 {
		width = 20
	}

	var text string
	if v.answer.NoAnswer {
		text = v.styles.Muted.Render(v.answer.Text)
	} else {
		text = v.styles.Answer.Width(width).Render(v.answer.Text)
	}

	if len(v.answer.Evaluation) == 0 {
		return text
	}

	scores := make([]string, 0, len(v.answer.Evaluation))
	for _, name := range v.answer.Evaluation.Names() {
		scores = append(scores, fmt.Sprintf("%s %.4f", name, v.answer.Evaluation[name]))
	}
	return text + "\n" + v.styles.Score.Render(strings.Join(scores, "  "))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.chunks.SetDimensions(width, height-14) // header, input, answer, status
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Answer returns the latest answer, or nil.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Question returns the text in the question input.
func (v *View) Question() string {
	return v.input.Question()
}

// SetQuestion sets the text in the question input.
func (v *View) SetQuestion(question string) {
	v.input.SetValue(question)
}

// SelectedChunk returns the highlighted retrieved chunk.
func (v *View) SelectedChunk() *domain.Chunk {
	return v.chunks.SelectedChunk()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the question input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset clears the answer and returns to input mode.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.Reset()
	v.chunks.SetChunks(nil, nil)
	v.answer = nil
	v.err = nil
	v.statusbar.Clear()
	v.refreshPipeline()
}
