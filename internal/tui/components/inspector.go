package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/tui/styles"
)

// Layout constants for inspector
const (
	InspectorBorderHeight     = 2
	InspectorScrollIndicators = 2
)

// ItemState is the user's relation to a media item
type ItemState struct {
	InWatchlist bool
	Review      *domain.Review
}

// Details is the by-id view of a media item; one field is set
type Details struct {
	Movie   *domain.MovieDetails
	Series  *domain.SeriesDetails
	Game    *domain.GameDetails
	Credits *domain.Credits
}

// inspectorContent holds the three-zone layout content
type inspectorContent struct {
	header string // fixed top
	body   string // scrollable middle
	footer string // fixed bottom
}

// Inspector displays details for the selected row
type Inspector struct {
	row        *Row
	collection *domain.Collection
	details    *Details
	state      *ItemState

	width      int
	height     int
	offset     int
	maxVisible int
}

// NewInspector creates a new inspector component
func NewInspector() Inspector {
	return Inspector{}
}

// SetRow shows row. Details and state are kept only if they belong to it.
func (i *Inspector) SetRow(row *Row) {
	if row == nil || i.row == nil || row.Ref != i.row.Ref {
		i.details = nil
		i.state = nil
		i.offset = 0
	}
	i.row = row
	i.collection = nil
}

// SetCollection shows a collection instead of a media row
func (i *Inspector) SetCollection(c *domain.Collection) {
	i.row = nil
	i.details = nil
	i.state = nil
	i.offset = 0
	i.collection = c
}

// Ref returns the media item on display, if any
func (i Inspector) Ref() (domain.MediaRef, bool) {
	if i.row == nil || !i.row.IsMedia() {
		return domain.MediaRef{}, false
	}
	return i.row.Ref, true
}

// SetDetails attaches details if they are for the row on display
func (i *Inspector) SetDetails(ref domain.MediaRef, d Details) {
	if r, ok := i.Ref(); ok && r == ref {
		i.details = &d
	}
}

// SetState attaches the user's state if it is for the row on display
func (i *Inspector) SetState(ref domain.MediaRef, s ItemState) {
	if r, ok := i.Ref(); ok && r == ref {
		i.state = &s
	}
}

// State returns the user's state for the row on display, if loaded
func (i Inspector) State() (ItemState, bool) {
	if i.state == nil {
		return ItemState{}, false
	}
	return *i.state, true
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
	// Title line and the blank line under it are reserved
	i.maxVisible = max(height-InspectorBorderHeight-InspectorScrollIndicators-2, 1)
}

// ScrollDown scrolls the body by one line
func (i *Inspector) ScrollDown() { i.offset++ }

// ScrollUp scrolls the body by one line
func (i *Inspector) ScrollUp() { i.offset = max(i.offset-1, 0) }

// View renders the component
func (i Inspector) View() string {
	style := styles.InactiveBorder
	contentWidth := max(i.width-3, 10)
	content := i.render(contentWidth)

	headerLines := splitLines(content.header)
	footerLines := splitLines(content.footer)
	bodyLines := splitLines(content.body)

	available := max(i.maxVisible-len(headerLines)-len(footerLines), 1)
	offset := min(i.offset, max(len(bodyLines)-available, 0))
	end := min(offset+available, len(bodyLines))
	visible := bodyLines[offset:end]

	up := " "
	if offset > 0 {
		up = styles.DimStyle.Render("↑ more")
	}
	down := " "
	if end < len(bodyLines) {
		down = styles.DimStyle.Render("↓ more")
	}

	parts := []string{styles.AccentStyle.Render("Info"), ""}
	parts = append(parts, headerLines...)
	parts = append(parts, up)
	parts = append(parts, visible...)
	for range available - len(visible) {
		parts = append(parts, "")
	}
	parts = append(parts, down)
	parts = append(parts, footerLines...)

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(i.width-frameW, 0)).
		Height(max(i.height-frameH, 0)).
		Render(strings.Join(parts, "\n"))
}

func (i Inspector) render(width int) inspectorContent {
	switch {
	case i.collection != nil:
		return renderCollection(*i.collection, width)
	case i.row != nil && i.row.IsMedia():
		return inspectorContent{
			header: i.renderHeader(width),
			body:   i.renderBody(width),
			footer: i.renderFooter(),
		}
	case i.row != nil:
		return inspectorContent{header: styles.TitleStyle.Render(styles.Truncate(i.row.Title, width))}
	default:
		return inspectorContent{body: styles.DimStyle.Render("No item selected")}
	}
}

func (i Inspector) renderHeader(width int) string {
	row := i.row
	lines := []string{styles.TitleStyle.Render(styles.Truncate(row.Title, width))}

	meta := []string{row.Ref.Kind.Label()}
	if row.Card != nil {
		if y := row.Card.Year(); y != "" {
			meta = append(meta, y)
		}
	}
	if d := i.details; d != nil {
		switch {
		case d.Movie != nil && d.Movie.Runtime > 0:
			meta = append(meta, fmt.Sprintf("%dm", d.Movie.Runtime))
		case d.Series != nil && d.Series.NumberOfSeasons > 0:
			meta = append(meta, fmt.Sprintf("%d seasons", d.Series.NumberOfSeasons))
		}
	}
	lines = append(lines, styles.DimStyle.Render(strings.Join(meta, " · ")))

	if row.Card != nil && row.Card.Rating > 0 {
		lines = append(lines, ratingStyle(row.Card).Render("★ "+row.Card.FormattedRating()))
	}
	return strings.Join(lines, "\n")
}

func ratingStyle(c *domain.Card) lipgloss.Style {
	scaled := c.Rating / c.RatingScale * 10
	switch {
	case scaled >= 7:
		return lipgloss.NewStyle().Foreground(styles.Green)
	case scaled >= 5:
		return lipgloss.NewStyle().Foreground(styles.Yellow)
	default:
		return lipgloss.NewStyle().Foreground(styles.Red)
	}
}

func (i Inspector) renderBody(width int) string {
	var sections []string
	wrap := lipgloss.NewStyle().Width(width)

	overview := ""
	if i.row.Card != nil {
		overview = i.row.Card.Overview
	}
	if d := i.details; d != nil {
		switch {
		case d.Movie != nil:
			if d.Movie.Tagline != "" {
				sections = append(sections, styles.SubtitleStyle.Italic(true).Render(wrap.Render(d.Movie.Tagline)))
			}
			sections = append(sections, genreLine(d.Movie.Genres))
		case d.Series != nil:
			sections = append(sections, genreLine(d.Series.Genres))
		case d.Game != nil:
			sections = append(sections, genreLine(d.Game.Genres))
			if len(d.Game.Developers) > 0 {
				sections = append(sections, styles.DimStyle.Render("By "+strings.Join(d.Game.Developers, ", ")))
			}
			if overview == "" {
				overview = d.Game.Description
			}
		}
	}
	if overview != "" {
		sections = append(sections, wrap.Render(overview))
	}

	if d := i.details; d != nil && d.Credits != nil && len(d.Credits.Cast) > 0 {
		cast := []string{styles.AccentStyle.Render("Cast")}
		for _, m := range d.Credits.Cast[:min(len(d.Credits.Cast), 8)] {
			line := m.Name
			if m.Character != "" {
				line += styles.DimStyle.Render(" as " + m.Character)
			}
			cast = append(cast, styles.Truncate(line, width+20))
		}
		sections = append(sections, strings.Join(cast, "\n"))
	}

	var out []string
	for _, s := range sections {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n\n")
}

func genreLine(genres []domain.Genre) string {
	if len(genres) == 0 {
		return ""
	}
	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = g.Name
	}
	return styles.DimStyle.Render(strings.Join(names, ", "))
}

func (i Inspector) renderFooter() string {
	if i.state == nil {
		return styles.DimStyle.Render("…")
	}
	watch := styles.DimStyle.Render("○ Not in watchlist")
	if i.state.InWatchlist {
		watch = styles.SuccessStyle.Render(styles.WatchlistChar + " In watchlist")
	}
	review := styles.DimStyle.Render("☆ Not rated")
	if r := i.state.Review; r != nil {
		review = styles.RenderRatingBar(r.Rating)
	}
	return watch + "\n" + review
}

func renderCollection(c domain.Collection, width int) inspectorContent {
	header := styles.TitleStyle.Render(styles.Truncate(c.Name, width)) + "\n" +
		styles.DimStyle.Render(fmt.Sprintf("%d items · created %s", c.ItemCount, c.CreatedAt.Format("2006-01-02")))
	body := ""
	if c.Description != "" {
		body = lipgloss.NewStyle().Width(width).Render(c.Description)
	}
	return inspectorContent{header: header, body: body}
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
