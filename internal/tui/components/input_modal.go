package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/mediadeck/internal/tui/styles"
)

// InputField describes one line of an input modal
type InputField struct {
	Placeholder string
	CharLimit   int
}

// InputModal is a text input modal with one or more fields. Tab moves
// between fields; enter submits.
type InputModal struct {
	visible bool
	title   string
	inputs  []textinput.Model
	focus   int
}

// NewInputModal creates a new input modal
func NewInputModal() InputModal {
	return InputModal{}
}

// Show displays the modal with a title and the given fields
func (m *InputModal) Show(title string, fields ...InputField) {
	m.visible = true
	m.title = title
	m.focus = 0
	m.inputs = make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Placeholder = f.Placeholder
		ti.CharLimit = f.CharLimit
		ti.Width = 30
		ti.Prompt = ""
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
		ti.PlaceholderStyle = styles.DimStyle
		m.inputs[i] = ti
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
}

// Hide dismisses the modal
func (m *InputModal) Hide() {
	m.visible = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// IsVisible returns whether the modal is shown
func (m InputModal) IsVisible() bool { return m.visible }

// Values returns the trimmed value of every field
func (m InputModal) Values() []string {
	out := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		out[i] = strings.TrimSpace(in.Value())
	}
	return out
}

// Update handles input events, returns (modal, cmd, submitted)
func (m InputModal) Update(msg tea.Msg) (InputModal, tea.Cmd, bool) {
	if !m.visible || len(m.inputs) == 0 {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return m, nil, true
		case "esc":
			m.Hide()
			return m, nil, false
		case "tab", "down":
			m.moveFocus(1)
			return m, nil, false
		case "shift+tab", "up":
			m.moveFocus(-1)
			return m, nil, false
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd, false
}

func (m *InputModal) moveFocus(dir int) {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + dir + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

// View renders the input modal
func (m InputModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 36

	line := lipgloss.NewStyle().
		Width(modalWidth).
		Background(styles.SlateDark)

	rows := []string{
		line.Foreground(styles.White).Bold(true).Render(m.title),
		line.Render(""),
	}
	for i, in := range m.inputs {
		prefix := "  "
		if i == m.focus {
			prefix = styles.AccentStyle.Render("> ")
		}
		rows = append(rows, line.Render(prefix+in.View()))
	}
	if len(m.inputs) > 1 {
		rows = append(rows, line.Render(""), line.Render(styles.DimStyle.Render("Tab: Next field  Enter: Save  Esc: Cancel")))
	}

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
