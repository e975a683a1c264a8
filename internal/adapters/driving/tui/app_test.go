package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(NewPorts(&MockRAGService{}))
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(NewPorts(&MockRAGService{}))

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewAsk, app.CurrentView())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingRAGService)
	assert.Nil(t, app)
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t)

	assert.NotNil(t, app.Init())
}

func TestApp_View_NotReady(t *testing.T) {
	app, err := NewApp(NewPorts(&MockRAGService{}))
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_WindowSize(t *testing.T) {
	app, err := NewApp(NewPorts(&MockRAGService{}))
	require.NoError(t, err)

	app.Update(tea.WindowSizeMsg{Width: 90, Height: 20})

	assert.True(t, app.Ready())
	assert.True(t, app.AskView().Ready())
}

func TestApp_AskFlow(t *testing.T) {
	rag := &MockRAGService{
		QueryFunc: func(_ context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
			assert.Equal(t, 3, opts.TopK)
			return &domain.Answer{Question: question, Text: "Forty two."}, nil
		},
	}
	ports := NewPorts(rag)
	ports.Options = domain.QueryOptions{TopK: 3}
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)

	app.AskView().SetQuestion("meaning of life?")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	app.Update(cmd())

	require.NotNil(t, app.AskView().Answer())
	assert.Contains(t, app.View(), "Forty two.")
	assert.NoError(t, app.Err())
}

func TestApp_AnswerError(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.AnswerReceived{Err: domain.ErrNotReady})

	assert.ErrorIs(t, app.Err(), domain.ErrNotReady)
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t)
	boom := errors.New("boom")

	app.Update(messages.ErrorOccurred{Err: boom})

	assert.Equal(t, boom, app.Err())
	assert.Contains(t, app.View(), "boom")
}

func TestApp_HelpView(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())

	view := app.View()
	assert.Contains(t, view, "Help")
	assert.Contains(t, view, "new question")
	assert.Contains(t, view, "expand chunk")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewAsk, app.CurrentView())
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	assert.Same(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}

func TestPromptModel(t *testing.T) {
	t.Run("enter with text returns question", func(t *testing.T) {
		m := &promptModel{input: newPromptInput()}
		m.input.SetValue("  where?  ")

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		require.NotNil(t, cmd)
		assert.Equal(t, "where?", m.question)
		assert.Equal(t, "", m.View())
	})

	t.Run("enter with no text waits", func(t *testing.T) {
		m := &promptModel{input: newPromptInput()}

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		assert.Nil(t, cmd)
		assert.Contains(t, m.View(), "Question")
	})

	t.Run("esc cancels", func(t *testing.T) {
		m := &promptModel{input: newPromptInput()}

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		require.NotNil(t, cmd)
		assert.True(t, m.cancelled)
	})

	t.Run("typing goes to the input", func(t *testing.T) {
		m := &promptModel{input: newPromptInput()}

		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})

		assert.Equal(t, "hi", m.input.Question())
	})
}
