package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/mediadeck/internal/tui/styles"
)

// Omnibar is the catalog search input shown above the search results
type Omnibar struct {
	input   textinput.Model
	width   int
	loading bool
	frame   int
	summary string // e.g. "24 results", shown right of the input
}

// NewOmnibar creates a new omnibar component
func NewOmnibar() Omnibar {
	ti := textinput.New()
	ti.Placeholder = "Search movies, series and games..."
	ti.CharLimit = 100
	ti.Prompt = "/ "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return Omnibar{input: ti}
}

// Focus starts typing
func (o *Omnibar) Focus() tea.Cmd {
	return o.input.Focus()
}

// Blur stops typing
func (o *Omnibar) Blur() {
	o.input.Blur()
}

// IsFocused returns true while the input takes keys
func (o Omnibar) IsFocused() bool {
	return o.input.Focused()
}

// Query returns the trimmed query
func (o Omnibar) Query() string {
	return strings.TrimSpace(o.input.Value())
}

// SetLoading shows a spinner next to the input
func (o *Omnibar) SetLoading(loading bool) {
	o.loading = loading
}

// SetSpinnerFrame updates the spinner animation frame
func (o *Omnibar) SetSpinnerFrame(frame int) {
	o.frame = frame
}

// SetSummary sets the text shown after the input
func (o *Omnibar) SetSummary(summary string) {
	o.summary = summary
	o.loading = false
}

// SetWidth updates the component width
func (o *Omnibar) SetWidth(width int) {
	o.width = width
	o.input.Width = max(width-20, 10)
}

// Update routes keys to the input, returns (omnibar, cmd, submitted)
func (o Omnibar) Update(msg tea.Msg) (Omnibar, tea.Cmd, bool) {
	if !o.input.Focused() {
		return o, nil, false
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			o.input.Blur()
			return o, nil, o.Query() != ""
		case "esc":
			o.input.Blur()
			return o, nil, false
		}
	}
	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	return o, cmd, false
}

// View renders the input line
func (o Omnibar) View() string {
	status := styles.DimStyle.Render(o.summary)
	if o.loading {
		status = styles.AccentStyle.Render(styles.SpinnerFrames[o.frame%len(styles.SpinnerFrames)] + " searching")
	}
	line := o.input.View() + "  " + status

	style := styles.InactiveBorder
	if o.input.Focused() {
		style = styles.ActiveBorder
	}
	frameW, _ := style.GetFrameSize()
	return style.Width(max(o.width-frameW, 0)).Render(line)
}
