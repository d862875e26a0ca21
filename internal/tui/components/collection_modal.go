package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/tui/styles"
)

// PickerResult is what the collection picker asks the app to do
type PickerResult int

const (
	PickerNone   PickerResult = iota
	PickerClose               // dismissed without a choice
	PickerAdd                 // add the item to SelectedID
	PickerCreate              // create NewName, then add the item to it
)

// CollectionModal picks the collection a media item is added to
type CollectionModal struct {
	visible     bool
	row         Row
	collections []domain.Collection

	cursor     int
	createMode bool
	newName    textinput.Model

	width int
}

// NewCollectionModal creates a new collection picker
func NewCollectionModal() CollectionModal {
	ti := textinput.New()
	ti.Placeholder = "Collection name..."
	ti.Prompt = "> "
	ti.CharLimit = 100

	return CollectionModal{newName: ti}
}

// Show displays the picker for row
func (m *CollectionModal) Show(collections []domain.Collection, row Row) {
	m.visible = true
	m.collections = collections
	m.row = row
	m.cursor = 0
	m.createMode = false
	m.newName.SetValue("")
	m.newName.Blur()
}

// Hide dismisses the modal
func (m *CollectionModal) Hide() {
	m.visible = false
	m.createMode = false
	m.newName.Blur()
}

func (m *CollectionModal) IsVisible() bool { return m.visible }

// Row returns the media row being filed
func (m *CollectionModal) Row() Row { return m.row }

// SelectedID returns the highlighted collection id
func (m *CollectionModal) SelectedID() string {
	if m.cursor < len(m.collections) {
		return m.collections[m.cursor].ID
	}
	return ""
}

// SelectedName returns the highlighted collection name
func (m *CollectionModal) SelectedName() string {
	if m.cursor < len(m.collections) {
		return m.collections[m.cursor].Name
	}
	return ""
}

// NewName returns the name entered for a new collection
func (m *CollectionModal) NewName() string {
	return strings.TrimSpace(m.newName.Value())
}

func (m *CollectionModal) SetWidth(width int) { m.width = width }

// HandleKeyMsg processes a key press. Every key is consumed while visible.
func (m *CollectionModal) HandleKeyMsg(msg tea.KeyMsg) PickerResult {
	if !m.visible {
		return PickerNone
	}

	if m.createMode {
		switch msg.String() {
		case "esc":
			m.createMode = false
			m.newName.Blur()
			m.newName.SetValue("")
		case "enter":
			if m.NewName() != "" {
				m.createMode = false
				m.newName.Blur()
				return PickerCreate
			}
		default:
			m.newName, _ = m.newName.Update(msg)
		}
		return PickerNone
	}

	switch {
	case key.Matches(msg, PickerKeys.Down):
		// The last position is the "create new" entry
		if m.cursor < len(m.collections) {
			m.cursor++
		}
	case key.Matches(msg, PickerKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, PickerKeys.Create):
		m.startCreate()
	case key.Matches(msg, PickerKeys.Enter):
		if m.cursor < len(m.collections) {
			return PickerAdd
		}
		m.startCreate()
	case key.Matches(msg, PickerKeys.Escape):
		return PickerClose
	}
	return PickerNone
}

func (m *CollectionModal) startCreate() {
	m.createMode = true
	m.newName.Focus()
}

// View renders the picker
func (m *CollectionModal) View() string {
	if !m.visible {
		return ""
	}

	modalWidth := 44
	if m.width > 0 && m.width < 60 {
		modalWidth = m.width - 10
	}
	inner := modalWidth - 4

	lines := []string{
		styles.ModalTitleStyle.Render("Add to Collection"),
		styles.SubtitleStyle.Render(styles.Truncate(m.row.Title, inner)),
		"",
	}

	render := func(text string, selected bool, fg lipgloss.Color) string {
		style := lipgloss.NewStyle().Foreground(fg)
		if selected {
			style = style.Foreground(styles.White).Background(styles.SlateLight)
		}
		return "  " + style.Render(styles.Pad(text, inner))
	}

	if len(m.collections) == 0 {
		lines = append(lines, styles.DimStyle.Render("  No collections yet"))
	}
	for i, c := range m.collections {
		text := fmt.Sprintf("%s (%d)", c.Name, c.ItemCount)
		lines = append(lines, render(text, i == m.cursor, styles.LightGray))
	}

	createLine := "[+] Create new collection..."
	if m.createMode {
		lines = append(lines, "", "  "+m.newName.View())
	} else {
		lines = append(lines, "", render(createLine, m.cursor == len(m.collections), styles.DimGray))
	}

	lines = append(lines, "", styles.DimStyle.Render("Enter: Add  n: New  Esc: Cancel"))

	return styles.ModalStyle.
		Width(modalWidth).
		Render(strings.Join(lines, "\n"))
}
