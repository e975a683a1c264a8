// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ChunkList displays the chunks retrieved for an answer in a navigable list.
// The selected chunk can be expanded to show its full text.
type ChunkList struct {
	chunks   []domain.Chunk
	scores   []float64
	selected int
	expanded bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewChunkList creates a new chunk list component.
func NewChunkList(s *styles.Styles) *ChunkList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ChunkList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the chunk list.
func (c *ChunkList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (c *ChunkList) Update(msg tea.Msg) (*ChunkList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			c.MoveUp()
		case "down", "j":
			c.MoveDown()
		case "enter", " ":
			c.ToggleExpand()
		}
	}
	return c, nil
}

// View renders the chunk list.
func (c *ChunkList) View() string {
	if len(c.chunks) == 0 {
		return c.styles.Muted.Render("No chunks retrieved")
	}

	lines := make([]string, 0, len(c.chunks)*2+2)
	lines = append(lines, c.styles.Subtitle.Render(fmt.Sprintf("Retrieved chunks (%d)", len(c.chunks))), "")

	// Each chunk takes a label line and a preview line.
	visibleCount := (c.height - 2) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if c.selected >= visibleCount {
		start = c.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(c.chunks) {
		end = len(c.chunks)
	}

	for i := start; i < end; i++ {
		lines = append(lines, c.renderChunk(i))
	}

	return strings.Join(lines, "\n")
}

func (c *ChunkList) renderChunk(index int) string {
	indicator := "  "
	if index == c.selected {
		indicator = "> "
	}

	label := fmt.Sprintf("Chunk %d", c.chunks[index].Position)
	if index < len(c.scores) {
		label += " " + c.styles.ScoreStyle(c.scores[index]).Render(fmt.Sprintf("(%.3f)", c.scores[index]))
	}

	var labelLine string
	if index == c.selected {
		labelLine = c.styles.Selected.Render(indicator) + c.styles.ChunkLabel.Render(label)
	} else {
		labelLine = c.styles.Normal.Render(indicator) + c.styles.ChunkLabel.Render(label)
	}

	content := c.chunks[index].Content
	if index == c.selected && c.expanded {
		return labelLine + "\n" + c.styles.Normal.Render(indent(content, "    "))
	}

	return labelLine + "\n" + c.styles.Muted.Render("    "+preview(content, c.width-6))
}

// preview returns the first line of content cut to max runes.
func preview(content string, max int) string {
	if max < 20 {
		max = 20
	}
	line, _, _ := strings.Cut(content, "\n")
	runes := []rune(line)
	if len(runes) > max {
		return string(runes[:max-3]) + "..."
	}
	return line
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// SetChunks replaces the list contents. Scores align with chunks and may be shorter.
func (c *ChunkList) SetChunks(chunks []domain.Chunk, matches []domain.Match) {
	c.chunks = chunks
	c.scores = make([]float64, 0, len(matches))
	for _, m := range matches {
		c.scores = append(c.scores, m.Score)
	}
	c.selected = 0
	c.expanded = false
}

// Chunks returns the current chunks.
func (c *ChunkList) Chunks() []domain.Chunk {
	return c.chunks
}

// Selected returns the index of the selected chunk.
func (c *ChunkList) Selected() int {
	return c.selected
}

// SelectedChunk returns the selected chunk, or nil if the list is empty.
func (c *ChunkList) SelectedChunk() *domain.Chunk {
	if len(c.chunks) == 0 {
		return nil
	}
	return &c.chunks[c.selected]
}

// MoveUp moves selection up and collapses the chunk.
func (c *ChunkList) MoveUp() {
	if c.selected > 0 {
		c.selected--
		c.expanded = false
	}
}

// MoveDown moves selection down and collapses the chunk.
func (c *ChunkList) MoveDown() {
	if c.selected < len(c.chunks)-1 {
		c.selected++
		c.expanded = false
	}
}

// ToggleExpand switches the selected chunk between preview and full text.
func (c *ChunkList) ToggleExpand() {
	if len(c.chunks) > 0 {
		c.expanded = !c.expanded
	}
}

// Expanded reports whether the selected chunk shows its full text.
func (c *ChunkList) Expanded() bool {
	return c.expanded
}

// SetDimensions sets the component dimensions.
func (c *ChunkList) SetDimensions(width, height int) {
	c.width = width
	c.height = height
}

// Count returns the number of chunks.
func (c *ChunkList) Count() int {
	return len(c.chunks)
}

// IsEmpty returns whether the list is empty.
func (c *ChunkList) IsEmpty() bool {
	return len(c.chunks) == 0
}
