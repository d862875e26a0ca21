package tui

// Layout constants
const (
	SidebarWidth      = 24
	InspectorPercent  = 35
	MinInspectorWidth = 30
	MinColumnWidth    = 15

	// Omnibar is one input line plus its border
	OmnibarHeight = 3

	// Vertical layout: single footer line
	ChromeHeight = 1
)

// mainLayout holds calculated widths for the View
type mainLayout struct {
	sidebarWidth   int
	columnWidths   []int
	inspectorWidth int // 0 if not shown
	columnHeight   int
	omnibarHeight  int // 0 outside search
}

// calculateLayout splits the window into sidebar, content columns and inspector
func (m Model) calculateLayout() mainLayout {
	l := mainLayout{sidebarWidth: SidebarWidth}
	contentHeight := max(m.Height-ChromeHeight, 0)
	l.columnHeight = contentHeight
	if m.CurrentView == ViewSearch {
		l.omnibarHeight = OmnibarHeight
		l.columnHeight = max(contentHeight-OmnibarHeight, 0)
	}

	available := max(m.Width-l.sidebarWidth, 0)
	if m.ShowInspector {
		l.inspectorWidth = max(available*InspectorPercent/100, MinInspectorWidth)
		available = max(available-l.inspectorWidth, 0)
	}

	n := max(len(m.Columns), 1)
	l.columnWidths = make([]int, len(m.Columns))
	for i := range l.columnWidths {
		w := available / n
		// Last column absorbs the remainder
		if i == len(l.columnWidths)-1 {
			w = available - (available/n)*(n-1)
		}
		l.columnWidths[i] = max(w, MinColumnWidth)
	}
	return l
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	l := m.calculateLayout()
	m.Sidebar.SetSize(l.sidebarWidth, max(m.Height-ChromeHeight, 0))
	for i, c := range m.Columns {
		c.SetSize(l.columnWidths[i], l.columnHeight)
	}
	if l.inspectorWidth > 0 {
		m.Inspector.SetSize(l.inspectorWidth, max(m.Height-ChromeHeight, 0))
	}

	contentWidth := 0
	for _, w := range l.columnWidths {
		contentWidth += w
	}
	m.Omnibar.SetWidth(contentWidth)
	m.CollectionModal.SetWidth(min(max(m.Width/2, 40), 60))
}
