package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/mediadeck/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	// Handle modal states
	if m.State == StateHelp {
		return m.renderHelp()
	}
	if m.State == StateConfirmSignOut {
		return m.renderSignOutConfirmation()
	}

	l := m.calculateLayout()

	views := make([]string, 0, len(m.Columns))
	for _, c := range m.Columns {
		views = append(views, c.View())
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, views...)
	if m.CurrentView == ViewSearch {
		body = lipgloss.JoinVertical(lipgloss.Left, m.Omnibar.View(), body)
	}

	parts := []string{m.Sidebar.View(), body}
	if l.inspectorWidth > 0 {
		parts = append(parts, m.Inspector.View())
	}
	content := lipgloss.JoinHorizontal(lipgloss.Top, parts...)

	view := lipgloss.JoinVertical(lipgloss.Left, content, m.renderFooter())

	// Overlay modals
	switch {
	case m.ReviewModal.IsVisible():
		view = m.overlay(m.ReviewModal.View())
	case m.CollectionModal.IsVisible():
		view = m.overlay(m.CollectionModal.View())
	case m.InputModal.IsVisible():
		view = m.overlay(m.InputModal.View())
	}

	return view
}

func (m Model) overlay(modal string) string {
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, modal)
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	var left string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	// Center: who the rows belong to
	var center string
	switch {
	case m.svc.Demo:
		center = styles.BadgeStyle.Render("DEMO")
	case m.User != "":
		center = styles.DimStyle.Render(m.User)
	default:
		center = styles.DimStyle.Render("not signed in")
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		gap := max(m.Width-leftWidth-rightWidth, 0)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad
	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      LIBRARY
  j/k        Up/down               w      Toggle watchlist
  h/l        Previous/next column  c      Add to collection
  tab        Sidebar/content       n      New collection
  g/Home     First item            v      Rate and review
  G/End      Last item             o      Open in browser
  Ctrl+u/d   Scroll half page
  ]/[        Next/previous page

SEARCH & VIEW                   OTHER
  /          Filter column         r      Refresh
  f          Search catalogs       L      Sign out
  enter      Details / open        q      Quit
  i          Toggle inspector      ?      This help
  J/K        Scroll inspector      Esc    Close / Cancel

Press ? or Esc to return...
`

	return m.overlay(styles.ModalStyle.Render(help))
}

// renderSignOutConfirmation renders the sign-out confirmation modal
func (m Model) renderSignOutConfirmation() string {
	modal := `
              Sign Out?

  This ends your session and clears
  your cached watchlist, collections
  and reviews.

        [Y] Yes      [N] No
`

	return m.overlay(styles.ModalStyle.Render(modal))
}
