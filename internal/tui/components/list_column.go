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
	"github.com/sahilm/fuzzy"
)

// Layout constants for list columns
const (
	// Border adds 1 char on each side
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// Row is one line of a list column. Media rows carry a Ref (and a Card when
// the row came from a catalog); collection rows carry a CollectionID.
type Row struct {
	Title        string
	Detail       string // right-aligned, dimmed
	Marker       string // one-cell prefix, e.g. watchlist membership
	Ref          domain.MediaRef
	Card         *domain.Card
	CollectionID string
}

// IsMedia reports whether the row refers to a catalog item
func (r Row) IsMedia() bool { return r.Ref.Kind.Valid() }

// CardRows converts catalog cards into rows
func CardRows(cards []domain.Card) []Row {
	rows := make([]Row, len(cards))
	for i := range cards {
		c := cards[i]
		rows[i] = Row{
			Title:  c.Title,
			Detail: strings.TrimSpace(c.Year() + " " + c.FormattedRating()),
			Ref:    c.Ref,
			Card:   &c,
		}
	}
	return rows
}

// ListColumn is a scrollable, filterable list of rows
type ListColumn struct {
	rows []Row

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	title string

	// Loading and error state
	loading      bool
	spinnerFrame int
	err          error

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	matches      fuzzy.Matches // nil when no filter query
}

// NewListColumn creates an empty list column
func NewListColumn(title string) *ListColumn {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &ListColumn{
		title:       title,
		filterInput: ti,
	}
}

// Update handles navigation and filter input when focused
func (c *ListColumn) Update(msg tea.Msg) (*ListColumn, tea.Cmd) {
	if !c.focused {
		return c, nil
	}
	keyMsg, isKey := msg.(tea.KeyMsg)

	// Filter typing mode
	if c.filterActive && c.filterInput.Focused() {
		if isKey {
			switch {
			case key.Matches(keyMsg, ListColumnKeys.Escape):
				c.clearFilter()
				return c, nil
			case key.Matches(keyMsg, ListColumnKeys.Enter):
				c.filterInput.Blur()
				return c, nil
			case keyMsg.String() == "backspace" && c.filterInput.Value() == "":
				c.clearFilter()
				return c, nil
			}
		}
		var cmd tea.Cmd
		c.filterInput, cmd = c.filterInput.Update(msg)
		c.applyFilter()
		return c, cmd
	}

	if !isKey {
		return c, nil
	}

	// Filter applied, navigating results
	if c.filterActive {
		switch {
		case key.Matches(keyMsg, ListColumnKeys.Escape):
			c.clearFilter()
			return c, nil
		case key.Matches(keyMsg, ListColumnKeys.Filter):
			c.filterInput.Focus()
			return c, nil
		}
	}

	count := c.ItemCount()
	if count == 0 {
		return c, nil
	}

	switch {
	case key.Matches(keyMsg, ListColumnKeys.Down):
		if c.cursor < count-1 {
			c.cursor++
			c.ensureVisible()
		}
	case key.Matches(keyMsg, ListColumnKeys.Up):
		if c.cursor > 0 {
			c.cursor--
			c.ensureVisible()
		}
	case key.Matches(keyMsg, ListColumnKeys.Home):
		c.cursor = 0
		c.offset = 0
	case key.Matches(keyMsg, ListColumnKeys.End):
		c.cursor = count - 1
		c.ensureVisible()
	case key.Matches(keyMsg, ListColumnKeys.HalfDown):
		c.cursor = min(c.cursor+c.maxVisible/2, count-1)
		c.ensureVisible()
	case key.Matches(keyMsg, ListColumnKeys.HalfUp):
		c.cursor = max(c.cursor-c.maxVisible/2, 0)
		c.ensureVisible()
	}
	return c, nil
}

// View renders the column with its border
func (c *ListColumn) View() string {
	style := styles.InactiveBorder
	if c.focused {
		style = styles.ActiveBorder
	}
	frameW, frameH := style.GetFrameSize()

	return style.
		Width(max(c.width-frameW, 0)).
		Height(max(c.height-frameH, 0)).
		Render(c.renderContent())
}

func (c *ListColumn) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.recalcMaxVisible()
	c.ensureVisible()
}

func (c *ListColumn) SetFocused(focused bool) { c.focused = focused }

func (c *ListColumn) IsFocused() bool { return c.focused }

func (c *ListColumn) Title() string { return c.title }

func (c *ListColumn) SetTitle(title string) { c.title = title }

// SetRows replaces the rows, keeping the cursor where possible so a refetch
// does not jump the selection back to the top
func (c *ListColumn) SetRows(rows []Row) {
	c.loading = false
	c.err = nil
	c.rows = rows
	if c.filterQuery != "" {
		c.applyFilter()
	}
	c.SetSelectedIndex(c.cursor)
}

// Rows returns every row, ignoring the filter
func (c *ListColumn) Rows() []Row { return c.rows }

// SetLoading shows the spinner instead of rows
func (c *ListColumn) SetLoading(loading bool) { c.loading = loading }

func (c *ListColumn) IsLoading() bool { return c.loading }

// SetError replaces the rows with an error message
func (c *ListColumn) SetError(err error) {
	c.loading = false
	c.err = err
}

// SetSpinnerFrame updates the spinner animation frame
func (c *ListColumn) SetSpinnerFrame(frame int) { c.spinnerFrame = frame }

// Selected returns the row under the cursor
func (c *ListColumn) Selected() (Row, bool) {
	count := c.ItemCount()
	if count == 0 || c.cursor >= count || c.loading || c.err != nil {
		return Row{}, false
	}
	return c.rows[c.mapIndex(c.cursor)], true
}

func (c *ListColumn) SelectedIndex() int { return c.cursor }

func (c *ListColumn) SetSelectedIndex(idx int) {
	last := c.ItemCount() - 1
	if last < 0 {
		c.cursor = 0
		c.offset = 0
		return
	}
	c.cursor = max(0, min(idx, last))
	c.ensureVisible()
}

// ItemCount returns the number of rows passing the filter
func (c *ListColumn) ItemCount() int {
	if c.matches != nil {
		return len(c.matches)
	}
	return len(c.rows)
}

// ToggleFilter activates the filter input
func (c *ListColumn) ToggleFilter() {
	c.filterActive = true
	c.filterInput.Focus()
	c.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (c *ListColumn) IsFiltering() bool { return c.filterActive }

// IsFilterTyping returns true if filter is active AND input is focused
func (c *ListColumn) IsFilterTyping() bool {
	return c.filterActive && c.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all rows
func (c *ListColumn) ClearFilter() { c.clearFilter() }

func (c *ListColumn) recalcMaxVisible() {
	// Title line and both scroll indicators are always reserved
	c.maxVisible = c.height - BorderHeight - ScrollIndicatorLines - 1
	if c.filterActive {
		c.maxVisible--
	}
	if c.maxVisible < 1 {
		c.maxVisible = 1
	}
}

func (c *ListColumn) ensureVisible() {
	if c.maxVisible <= 0 {
		return
	}
	if c.cursor < c.offset {
		c.offset = c.cursor
	}
	if c.cursor >= c.offset+c.maxVisible {
		c.offset = c.cursor - c.maxVisible + 1
	}
}

func (c *ListColumn) clearFilter() {
	c.filterActive = false
	c.filterQuery = ""
	c.matches = nil
	c.filterInput.SetValue("")
	c.filterInput.Blur()
	c.recalcMaxVisible()
}

func (c *ListColumn) applyFilter() {
	query := strings.TrimSpace(c.filterInput.Value())
	c.filterQuery = query
	if query == "" {
		c.matches = nil
		return
	}

	c.matches = fuzzy.FindFrom(query, rowSource(c.rows))
	if c.matches == nil {
		c.matches = fuzzy.Matches{}
	}
	c.cursor = 0
	c.offset = 0
}

func (c *ListColumn) mapIndex(i int) int {
	if c.matches != nil && i < len(c.matches) {
		return c.matches[i].Index
	}
	return i
}

// rowSource adapts rows to fuzzy.Source over their titles
type rowSource []Row

func (s rowSource) String(i int) string { return s[i].Title }
func (s rowSource) Len() int            { return len(s) }

// Rendering

func (c *ListColumn) renderContent() string {
	itemWidth := max(c.width-BorderWidth, 10)
	titleLine := styles.AccentStyle.Render(styles.Truncate(c.title, itemWidth))

	if c.loading {
		spinner := styles.SpinnerFrames[c.spinnerFrame%len(styles.SpinnerFrames)]
		return titleLine + "\n \n" + styles.DimStyle.Render(spinner+" Loading...")
	}
	if c.err != nil {
		msg := styles.Truncate("✗ "+c.err.Error(), itemWidth-1)
		return titleLine + "\n \n" + styles.ErrorStyle.Render(msg)
	}

	count := c.ItemCount()
	if count == 0 {
		empty := "No items"
		if c.filterQuery != "" {
			empty = "No matches"
		}
		content := titleLine + "\n \n" + styles.DimStyle.Render(empty)
		if c.filterActive {
			content += "\n" + c.renderFilterBar()
		}
		return content
	}

	end := min(c.offset+c.maxVisible, count)
	lines := make([]string, 0, end-c.offset)
	for i := c.offset; i < end; i++ {
		var matched []int
		if c.matches != nil {
			matched = c.matches[i].MatchedIndexes
		}
		lines = append(lines, c.renderRow(c.rows[c.mapIndex(i)], matched, i == c.cursor, itemWidth))
	}

	// Header and footer lines are always present so the layout never shifts
	header := " "
	if c.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if c.filterActive {
		content += "\n" + c.renderFilterBar()
	}
	return content
}

func (c *ListColumn) renderRow(row Row, matched []int, selected bool, width int) string {
	marker := row.Marker
	if marker == "" {
		marker = " "
	}
	markerFg := styles.Accent

	detail := ""
	if row.Detail != "" {
		detail = " " + row.Detail
	}
	// marker(1) + space(1) + margins(2)
	available := max(width-4-lipgloss.Width(detail), 5)
	title := styles.Truncate(row.Title, available)
	dimFg := styles.DimGray

	parts := []styles.RowPart{{Text: marker, Foreground: &markerFg}, {Text: " "}}
	parts = append(parts, highlightMatches(title, matched)...)
	if detail != "" {
		gap := available - lipgloss.Width(title)
		parts = append(parts, styles.RowPart{Text: strings.Repeat(" ", max(gap, 0)) + detail, Foreground: &dimFg})
	}
	return styles.RenderListRow(parts, selected, width)
}

// highlightMatches splits title into parts, coloring the fuzzy-matched runes
func highlightMatches(title string, matched []int) []styles.RowPart {
	if len(matched) == 0 {
		return []styles.RowPart{{Text: title}}
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	accent := styles.Accent
	var parts []styles.RowPart
	var run strings.Builder
	runHit := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		p := styles.RowPart{Text: run.String()}
		if runHit {
			p.Foreground = &accent
		}
		parts = append(parts, p)
		run.Reset()
	}
	// MatchedIndexes are byte offsets into the title
	for i, r := range title {
		if hit[i] != runHit {
			flush()
			runHit = hit[i]
		}
		run.WriteRune(r)
	}
	flush()
	return parts
}

func (c *ListColumn) renderFilterBar() string {
	countStr := ""
	if c.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", c.ItemCount(), len(c.rows)))
	}
	return c.filterInput.View() + countStr
}
