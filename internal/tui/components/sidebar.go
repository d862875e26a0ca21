package components

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/mediadeck/internal/tui/styles"
)

// NavItem implements list.Item for one sidebar destination. Target is an
// opaque identifier the app maps to a view.
type NavItem struct {
	Label  string
	Target string
	Header bool // section heading, not selectable
}

func (i NavItem) FilterValue() string { return i.Label }

func (i NavItem) Title() string {
	if i.Header {
		return i.Label
	}
	return "  " + i.Label
}

func (i NavItem) Description() string { return "" }

// Border overhead for the sidebar panel
const BorderSize = 2

// Sidebar is the view navigation sidebar
type Sidebar struct {
	list    list.Model
	focused bool
	width   int
	height  int
}

// NewSidebar creates a sidebar listing items
func NewSidebar(title string, items []NavItem) Sidebar {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Foreground(styles.White).
		Background(styles.SlateLight).
		Padding(0, 1)
	delegate.Styles.NormalTitle = lipgloss.NewStyle().
		Foreground(styles.LightGray).
		Padding(0, 1)

	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = it
	}

	l := list.New(listItems, delegate, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true).
		Padding(0, 1)

	s := Sidebar{list: l}
	s.skipHeaders(1)
	return s
}

// SetSize updates the component dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.list.SetSize(width-BorderSize, height-BorderSize)
}

func (s *Sidebar) SetFocused(focused bool) { s.focused = focused }

func (s Sidebar) IsFocused() bool { return s.focused }

// Selected returns the highlighted destination
func (s Sidebar) Selected() (NavItem, bool) {
	item, ok := s.list.SelectedItem().(NavItem)
	return item, ok
}

// Select highlights the item with the given target
func (s *Sidebar) Select(target string) {
	for i, it := range s.list.Items() {
		if it.(NavItem).Target == target {
			s.list.Select(i)
			return
		}
	}
}

// Update moves the highlight, skipping section headings
func (s Sidebar) Update(msg tea.Msg) (Sidebar, tea.Cmd) {
	if !s.focused {
		return s, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch {
	case key.Matches(keyMsg, ListColumnKeys.Down):
		s.list.CursorDown()
		s.skipHeaders(1)
	case key.Matches(keyMsg, ListColumnKeys.Up):
		s.list.CursorUp()
		s.skipHeaders(-1)
	case key.Matches(keyMsg, ListColumnKeys.Home):
		s.list.Select(0)
		s.skipHeaders(1)
	case key.Matches(keyMsg, ListColumnKeys.End):
		s.list.Select(len(s.list.Items()) - 1)
		s.skipHeaders(-1)
	}
	return s, nil
}

func (s *Sidebar) skipHeaders(dir int) {
	items := s.list.Items()
	for i := s.list.Index(); i >= 0 && i < len(items); i += dir {
		if !items[i].(NavItem).Header {
			s.list.Select(i)
			return
		}
	}
	// Ran off the end; search the other way
	for i := s.list.Index(); i >= 0 && i < len(items); i -= dir {
		if !items[i].(NavItem).Header {
			s.list.Select(i)
			return
		}
	}
}

// View renders the component
func (s Sidebar) View() string {
	style := styles.InactiveBorder
	if s.focused {
		style = styles.ActiveBorder
	}
	frameW, frameH := style.GetFrameSize()

	return style.
		Width(max(s.width-frameW, 0)).
		Height(max(s.height-frameH, 0)).
		Render(s.list.View())
}
