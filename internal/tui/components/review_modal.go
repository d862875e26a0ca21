package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/tui/styles"
)

const (
	minRating     = 1
	maxRating     = 10
	defaultRating = 7
)

// ReviewModal edits the rating and comment for one media item
type ReviewModal struct {
	visible bool
	row     Row
	rating  int
	comment textinput.Model
	editing bool // comment field focused
}

// NewReviewModal creates a new review modal
func NewReviewModal() ReviewModal {
	ti := textinput.New()
	ti.Placeholder = "Optional comment..."
	ti.Prompt = ""
	ti.CharLimit = 2000
	ti.Width = 40
	return ReviewModal{comment: ti}
}

// Show displays the modal for row, prefilled from existing when set
func (m *ReviewModal) Show(row Row, existing *domain.Review) {
	m.visible = true
	m.row = row
	m.rating = defaultRating
	m.comment.SetValue("")
	if existing != nil {
		m.rating = existing.Rating
		m.comment.SetValue(existing.Comment)
	}
	m.editing = false
	m.comment.Blur()
}

// Hide dismisses the modal
func (m *ReviewModal) Hide() {
	m.visible = false
	m.comment.Blur()
}

func (m *ReviewModal) IsVisible() bool { return m.visible }

func (m *ReviewModal) Row() Row { return m.row }

func (m *ReviewModal) Rating() int { return m.rating }

func (m *ReviewModal) Comment() string { return strings.TrimSpace(m.comment.Value()) }

// HandleKeyMsg processes a key press, returns (submit, close)
func (m *ReviewModal) HandleKeyMsg(msg tea.KeyMsg) (submit, closed bool) {
	if !m.visible {
		return false, false
	}

	switch {
	case key.Matches(msg, ReviewModalKeys.Escape):
		return false, true
	case key.Matches(msg, ReviewModalKeys.Submit):
		return true, false
	case key.Matches(msg, ReviewModalKeys.Switch):
		m.editing = !m.editing
		if m.editing {
			m.comment.Focus()
		} else {
			m.comment.Blur()
		}
		return false, false
	}

	if m.editing {
		m.comment, _ = m.comment.Update(msg)
		return false, false
	}

	switch {
	case key.Matches(msg, ReviewModalKeys.Lower):
		m.rating = max(m.rating-1, minRating)
	case key.Matches(msg, ReviewModalKeys.Raise):
		m.rating = min(m.rating+1, maxRating)
	default:
		// Digits jump straight to a rating; 0 means 10
		if s := msg.String(); len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
			m.rating = int(s[0] - '0')
			if m.rating == 0 {
				m.rating = maxRating
			}
		}
	}
	return false, false
}

// View renders the modal
func (m *ReviewModal) View() string {
	if !m.visible {
		return ""
	}

	ratingLabel := "  Rating   "
	commentLabel := "  Comment  "
	if m.editing {
		commentLabel = styles.AccentStyle.Render("> Comment  ")
	} else {
		ratingLabel = styles.AccentStyle.Render("> Rating   ")
	}

	lines := []string{
		styles.ModalTitleStyle.Render("Rate & Review"),
		styles.SubtitleStyle.Render(styles.Truncate(m.row.Title, 44)),
		"",
		ratingLabel + styles.RenderRatingBar(m.rating),
		commentLabel + m.comment.View(),
		"",
		styles.DimStyle.Render("←/→ or 1-0: Rating  Tab: Comment  Enter: Save  Esc: Cancel"),
	}
	return styles.ModalStyle.Render(strings.Join(lines, "\n"))
}
