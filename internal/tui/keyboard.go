package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/mediadeck/internal/tui/components"
)

// handleKeyMsg routes key presses to modals first, then to the focused pane
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.State {
	case StateHelp:
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateBrowsing
		}
		return m, nil
	case StateConfirmSignOut:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.State = StateBrowsing
			return m, SignOutCmd(m.svc.Account)
		case key.Matches(msg, Keys.Deny):
			m.State = StateBrowsing
		}
		return m, nil
	}

	if m.ReviewModal.IsVisible() {
		return m.handleReviewModalKeys(msg)
	}
	if m.CollectionModal.IsVisible() {
		return m.handleCollectionModalKeys(msg)
	}
	if m.InputModal.IsVisible() {
		return m.handleInputModalKeys(msg)
	}
	if m.Omnibar.IsFocused() {
		return m.handleOmnibarKeys(msg)
	}

	// A column typing a filter gets every key
	if col := m.ActiveColumn(); m.Focus == PaneMain && col != nil && col.IsFilterTyping() {
		col.Update(msg)
		return m, m.syncInspector()
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil
	case key.Matches(msg, Keys.Tab):
		if m.Focus == PaneSidebar {
			m.Focus = PaneMain
		} else {
			m.Focus = PaneSidebar
		}
		m.applyFocus()
		return m, nil
	case key.Matches(msg, Keys.Search):
		m.Sidebar.Select(targetSearch)
		if m.CurrentView == ViewSearch {
			cmd := m.Omnibar.Focus()
			m.applyFocus()
			return m, cmd
		}
		return m, m.openTarget(targetSearch)
	case key.Matches(msg, Keys.Refresh):
		m.svc.Queries.InvalidateAll()
		return m, tea.Batch(m.loadView(), m.reloadInspectorState())
	case key.Matches(msg, Keys.NewCollection):
		m.InputModal.Show("New collection",
			components.InputField{Placeholder: "Name", CharLimit: 100},
			components.InputField{Placeholder: "Description (optional)", CharLimit: 500},
		)
		return m, nil
	case key.Matches(msg, Keys.ToggleInspector):
		m.ShowInspector = !m.ShowInspector
		m.updateLayout()
		return m, nil
	case key.Matches(msg, Keys.SignOut):
		if m.svc.Demo {
			return m, m.setStatus("Demo mode has no account to sign out of", true)
		}
		m.State = StateConfirmSignOut
		return m, nil
	case key.Matches(msg, Keys.InfoDown):
		m.Inspector.ScrollDown()
		return m, nil
	case key.Matches(msg, Keys.InfoUp):
		m.Inspector.ScrollUp()
		return m, nil
	}

	if m.Focus == PaneSidebar {
		return m.handleSidebarKeys(msg)
	}
	return m.handleMainKeys(msg)
}

func (m Model) handleSidebarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Enter, Keys.Right):
		item, ok := m.Sidebar.Selected()
		if !ok {
			return m, nil
		}
		return m, m.openTarget(item.Target)
	case key.Matches(msg, Keys.Escape):
		m.Focus = PaneMain
		m.applyFocus()
		return m, nil
	}

	var cmd tea.Cmd
	m.Sidebar, cmd = m.Sidebar.Update(msg)
	return m, cmd
}

func (m Model) handleMainKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	col := m.ActiveColumn()
	if col == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Left):
		if m.Active > 0 {
			m.Active--
		} else {
			m.Focus = PaneSidebar
		}
		m.applyFocus()
		return m, m.syncInspector()
	case key.Matches(msg, Keys.Right):
		if m.Active < len(m.Columns)-1 {
			m.Active++
			m.applyFocus()
			return m, m.syncInspector()
		}
		return m, nil
	case key.Matches(msg, Keys.Escape):
		if col.IsFiltering() {
			col.ClearFilter()
			return m, m.syncInspector()
		}
		if m.CurrentView == ViewSearch {
			cmd := m.Omnibar.Focus()
			m.applyFocus()
			return m, cmd
		}
		return m, nil
	case key.Matches(msg, Keys.Filter):
		col.ToggleFilter()
		return m, nil
	case key.Matches(msg, Keys.NextPage):
		if m.CurrentView == ViewList && (m.Pages == 0 || m.Page < m.Pages) {
			m.Page++
			m.gen++
			return m, m.loadView()
		}
		return m, nil
	case key.Matches(msg, Keys.PrevPage):
		if m.CurrentView == ViewList && m.Page > 1 {
			m.Page--
			m.gen++
			return m, m.loadView()
		}
		return m, nil
	case key.Matches(msg, Keys.Enter):
		return m.activateSelection()
	case key.Matches(msg, Keys.Watchlist):
		row, ok := m.selectedMedia()
		if !ok {
			return m, nil
		}
		return m, ToggleWatchlistCmd(m.svc.Watchlist, row)
	case key.Matches(msg, Keys.Collect):
		row, ok := m.selectedMedia()
		if !ok {
			return m, nil
		}
		m.CollectionModal.Show(m.collections, row)
		return m, LoadCollectionsCmd(m.svc.Collections, m.gen)
	case key.Matches(msg, Keys.Review):
		row, ok := m.selectedMedia()
		if !ok {
			return m, nil
		}
		state, _ := m.Inspector.State()
		m.ReviewModal.Show(row, state.Review)
		return m, nil
	case key.Matches(msg, Keys.Open):
		row, ok := m.selectedMedia()
		if !ok {
			return m, nil
		}
		return m, OpenInBrowserCmd(m.svc.Opener, row)
	}

	col.Update(msg)
	return m, m.syncInspector()
}

// activateSelection opens a collection or loads the details of a media row
func (m Model) activateSelection() (tea.Model, tea.Cmd) {
	row, ok := m.selectedRow()
	if !ok {
		return m, nil
	}
	if !row.IsMedia() && row.CollectionID != "" && m.CurrentView == ViewCollections {
		m.openCollection = row.CollectionID
		m.Columns[1].SetTitle(row.Title)
		m.Columns[1].SetRows(nil)
		m.Columns[1].SetLoading(true)
		m.Active = 1
		m.applyFocus()
		return m, LoadCollectionItemsCmd(m.svc.Collections, m.gen, row.CollectionID)
	}
	if row.IsMedia() {
		if !m.ShowInspector {
			m.ShowInspector = true
			m.updateLayout()
		}
		return m, LoadDetailsCmd(m.svc.Catalog, row.Ref)
	}
	return m, nil
}

func (m Model) handleOmnibarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "down", "tab":
		m.Omnibar.Blur()
		m.Focus = PaneMain
		m.applyFocus()
		return m, nil
	}

	var cmd tea.Cmd
	var submitted bool
	m.Omnibar, cmd, submitted = m.Omnibar.Update(msg)
	if !submitted {
		return m, cmd
	}
	m.Omnibar.Blur()
	m.gen++
	m.Focus = PaneMain
	m.applyFocus()
	return m, tea.Batch(cmd, m.loadView())
}

func (m Model) handleInputModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.InputModal.Hide()
		return m, nil
	}

	var cmd tea.Cmd
	var submitted bool
	m.InputModal, cmd, submitted = m.InputModal.Update(msg)
	if !submitted {
		return m, cmd
	}
	values := m.InputModal.Values()
	if len(values) < 2 || values[0] == "" {
		return m, cmd
	}
	m.InputModal.Hide()
	return m, tea.Batch(cmd, CreateCollectionCmd(m.svc.Collections, values[0], values[1], nil))
}

func (m Model) handleCollectionModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.CollectionModal.HandleKeyMsg(msg) {
	case components.PickerClose:
		m.CollectionModal.Hide()
	case components.PickerAdd:
		row := m.CollectionModal.Row()
		id, name := m.CollectionModal.SelectedID(), m.CollectionModal.SelectedName()
		m.CollectionModal.Hide()
		return m, AddToCollectionCmd(m.svc.Collections, id, name, row)
	case components.PickerCreate:
		row := m.CollectionModal.Row()
		name := m.CollectionModal.NewName()
		m.CollectionModal.Hide()
		return m, CreateCollectionCmd(m.svc.Collections, name, "", &row)
	}
	return m, nil
}

func (m Model) handleReviewModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	submit, closed := m.ReviewModal.HandleKeyMsg(msg)
	switch {
	case submit:
		row := m.ReviewModal.Row()
		rating, comment := m.ReviewModal.Rating(), m.ReviewModal.Comment()
		m.ReviewModal.Hide()
		return m, SubmitReviewCmd(m.svc.Reviews, row, rating, comment)
	case closed:
		m.ReviewModal.Hide()
	}
	return m, nil
}
