package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PromptModel is a one-line modal: a titled text input with enter to
// submit and esc to cancel. Backs both the group search and the
// description editor.
type PromptModel struct {
	title    string
	input    textinput.Model
	theme    Theme
	onSubmit func(string)
	width    int
}

// NewPrompt builds a prompt prefilled with value. onSubmit runs on
// enter with the edited text.
func NewPrompt(title, value string, theme Theme, onSubmit func(string)) *PromptModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 120
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()
	return &PromptModel{
		title:    title,
		input:    ti,
		theme:    theme,
		onSubmit: onSubmit,
		width:    48,
	}
}

// SetWidth adjusts the modal width.
func (p *PromptModel) SetWidth(w int) {
	if w > 20 {
		p.width = w
	}
	p.input.Width = p.width - 6
}

// Update handles a key press. done reports that the modal should close,
// submitted whether onSubmit fired.
func (p *PromptModel) Update(msg tea.KeyMsg) (done, submitted bool) {
	switch msg.String() {
	case "esc", "ctrl+c":
		return true, false
	case "enter":
		if p.onSubmit != nil {
			p.onSubmit(p.input.Value())
		}
		return true, true
	}
	p.input, _ = p.input.Update(msg)
	return false, false
}

// View renders the modal box.
func (p *PromptModel) View() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		p.theme.Header.Render(p.title),
		p.input.View(),
		p.theme.MutedText.Render("enter save · esc cancel"),
	)
	return p.theme.NodeBox.Width(p.width).Render(body)
}
