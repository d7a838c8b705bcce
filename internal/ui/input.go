package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// QueryInput owns the editable filter text. Editing never triggers a
// retrieval; enter emits a SubmitMsg with the text as typed. In navigate
// mode the text then passes through Location.WithQuery and is trimmed;
// replace mode sends it untouched.
type QueryInput struct {
	input textinput.Model
}

// NewQueryInput creates a blurred input holding seed.
func NewQueryInput(seed string) QueryInput {
	ti := textinput.New()
	ti.Placeholder = "ROE > 10 AND Market Capitalization >= 300"
	ti.Prompt = "/ "
	ti.CharLimit = 512
	ti.Width = 60
	ti.PromptStyle = FilterBarPrompt
	ti.TextStyle = FilterBarText
	ti.SetValue(seed)
	return QueryInput{input: ti}
}

// Seed replaces the text, e.g. when a new Location is activated.
func (q QueryInput) Seed(s string) QueryInput {
	q.input.SetValue(s)
	q.input.CursorEnd()
	return q
}

// Value returns the current text.
func (q QueryInput) Value() string { return q.input.Value() }

// Focused reports whether keystrokes go to the input.
func (q QueryInput) Focused() bool { return q.input.Focused() }

// Focus starts editing.
func (q QueryInput) Focus() (QueryInput, tea.Cmd) {
	cmd := q.input.Focus()
	q.input.CursorEnd()
	return q, tea.Batch(cmd, textinput.Blink)
}

// Blur stops editing. The text is kept.
func (q QueryInput) Blur() QueryInput {
	q.input.Blur()
	return q
}

// SetWidth sizes the editable area.
func (q QueryInput) SetWidth(w int) QueryInput {
	if w > 10 {
		q.input.Width = w
	}
	return q
}

// Update handles keys while focused: enter submits and blurs, esc blurs.
func (q QueryInput) Update(msg tea.Msg) (QueryInput, tea.Cmd) {
	if !q.input.Focused() {
		return q, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.Type {
		case tea.KeyEnter:
			value := q.input.Value()
			q.input.Blur()
			return q, func() tea.Msg { return SubmitMsg{Query: value} }
		case tea.KeyEsc:
			q.input.Blur()
			return q, nil
		}
	}

	var cmd tea.Cmd
	q.input, cmd = q.input.Update(msg)
	return q, cmd
}

// View renders the input line.
func (q QueryInput) View() string {
	return q.input.View()
}
