package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/mediadeck/internal/adapter"
	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/service"
	"github.com/mmcdole/mediadeck/internal/tui/components"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
	StateConfirmSignOut
)

// ViewKind is the content shown right of the sidebar
type ViewKind int

const (
	ViewDashboard ViewKind = iota
	ViewList
	ViewSearch
	ViewWatchlist
	ViewCollections
	ViewReviews
)

// Pane is the focused region
type Pane int

const (
	PaneSidebar Pane = iota
	PaneMain
)

// Sidebar targets
const (
	targetDashboard   = "dashboard"
	targetSearch      = "search"
	targetWatchlist   = "watchlist"
	targetCollections = "collections"
	targetReviews     = "reviews"
	listTargetPrefix  = "list:"
)

// Services are the dependencies of the TUI
type Services struct {
	Catalog     *service.CatalogService
	Watchlist   *service.WatchlistService
	Collections *service.CollectionService
	Reviews     *service.ReviewService
	Account     *service.AccountService
	Queries     *service.Queries
	Opener      *adapter.Opener
	Changes     <-chan string
	Demo        bool
}

// Model is the main Bubble Tea model for the application
type Model struct {
	State ApplicationState
	Ready bool

	svc Services

	// UI components
	Sidebar         components.Sidebar
	Columns         []*components.ListColumn
	Inspector       components.Inspector
	Omnibar         components.Omnibar
	InputModal      components.InputModal
	CollectionModal components.CollectionModal
	ReviewModal     components.ReviewModal

	// Navigation
	CurrentView ViewKind
	List        service.List
	Page        int
	Pages       int
	Focus       Pane
	Active      int // focused column
	gen         int // bumped on every view change

	// User data shown by the collections view and the collection picker
	collections    []domain.Collection
	openCollection string

	// Dimensions
	Width  int
	Height int

	// UI state
	User          string
	StatusMsg     string
	StatusIsErr   bool
	statusID      int
	SpinnerFrame  int
	ShowInspector bool
}

// NewModel creates a new application model
func NewModel(svc Services) Model {
	m := Model{
		State:           StateBrowsing,
		svc:             svc,
		Sidebar:         components.NewSidebar("mediadeck", sidebarItems()),
		Inspector:       components.NewInspector(),
		Omnibar:         components.NewOmnibar(),
		InputModal:      components.NewInputModal(),
		CollectionModal: components.NewCollectionModal(),
		ReviewModal:     components.NewReviewModal(),
		Page:            1,
		ShowInspector:   true,
	}
	m.Sidebar.Select(targetDashboard)
	m.setView(ViewDashboard)
	m.Focus = PaneMain
	m.applyFocus()
	return m
}

func sidebarItems() []components.NavItem {
	items := []components.NavItem{
		{Label: "Home", Header: true},
		{Label: "Dashboard", Target: targetDashboard},
		{Label: "Search", Target: targetSearch},
		{Label: "Browse", Header: true},
	}
	for _, l := range service.Lists {
		items = append(items, components.NavItem{Label: listLabel(l), Target: listTargetPrefix + string(l)})
	}
	return append(items,
		components.NavItem{Label: "Library", Header: true},
		components.NavItem{Label: "Watchlist", Target: targetWatchlist},
		components.NavItem{Label: "Collections", Target: targetCollections},
		components.NavItem{Label: "My Reviews", Target: targetReviews},
	)
}

func listLabel(l service.List) string {
	switch l {
	case service.ListTrending:
		return "Trending"
	case service.ListPopularMovies:
		return "Popular Movies"
	case service.ListTopRatedMovies:
		return "Top Rated Movies"
	case service.ListUpcomingMovies:
		return "Upcoming Movies"
	case service.ListPopularSeries:
		return "Popular Series"
	case service.ListTopRatedSeries:
		return "Top Rated Series"
	case service.ListTrendingGames:
		return "Trending Games"
	case service.ListPopularGames:
		return "Popular Games"
	case service.ListTopRatedGames:
		return "Top Rated Games"
	case service.ListUpcomingGames:
		return "Upcoming Games"
	default:
		return string(l)
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadView(),
		LoadUserCmd(m.svc.Account),
		WaitForChangeCmd(m.svc.Changes),
		TickCmd(100*time.Millisecond),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		for _, c := range m.Columns {
			c.SetSpinnerFrame(m.SpinnerFrame)
		}
		m.Omnibar.SetSpinnerFrame(m.SpinnerFrame)
		return m, TickCmd(100 * time.Millisecond)

	case DashboardLoadedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		for i, s := range []service.Section{msg.Dashboard.Movies, msg.Dashboard.Series, msg.Dashboard.Games} {
			m.Columns[i].SetTitle(s.Title)
			if s.Err != nil {
				m.Columns[i].SetError(s.Err)
				continue
			}
			m.Columns[i].SetRows(components.CardRows(s.Cards))
		}
		return m, m.syncInspector()

	case CardsLoadedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.Page = msg.Page.Page
		m.Pages = msg.Page.TotalPages
		m.Columns[0].SetTitle(fmt.Sprintf("%s · page %d/%d", listLabel(msg.List), m.Page, max(m.Pages, 1)))
		m.Columns[0].SetRows(components.CardRows(msg.Page.Results))
		m.Columns[0].SetSelectedIndex(0)
		return m, m.syncInspector()

	case SearchResultsMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.Columns[0].SetRows(components.CardRows(msg.Results.Cards))
		m.Columns[0].SetSelectedIndex(0)
		summary := fmt.Sprintf("%d results", len(msg.Results.Cards))
		if err := msg.Results.Err(); err != nil {
			summary += fmt.Sprintf(" (%d catalogs failed)", len(msg.Results.Errs))
		}
		m.Omnibar.SetSummary(summary)
		return m, m.syncInspector()

	case WatchlistLoadedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.Columns[0].SetTitle(fmt.Sprintf("Watchlist (%d)", len(msg.Entries)))
		m.Columns[0].SetRows(watchlistRows(msg.Entries))
		return m, m.syncInspector()

	case CollectionsLoadedMsg:
		m.collections = msg.Collections
		if msg.Gen != m.gen || m.CurrentView != ViewCollections {
			return m, nil
		}
		m.Columns[0].SetRows(collectionRows(msg.Collections))
		return m, m.syncInspector()

	case CollectionItemsLoadedMsg:
		if msg.Gen != m.gen || msg.CollectionID != m.openCollection {
			return m, nil
		}
		m.Columns[1].SetRows(collectionItemRows(msg.Items))
		return m, m.syncInspector()

	case ReviewsLoadedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.Columns[0].SetTitle(fmt.Sprintf("My Reviews (%d)", len(msg.Reviews)))
		m.Columns[0].SetRows(reviewRows(msg.Reviews))
		return m, m.syncInspector()

	case LoadFailedMsg:
		if msg.Gen != m.gen || msg.Column >= len(m.Columns) {
			return m, nil
		}
		m.Columns[msg.Column].SetError(msg.Err)
		m.Omnibar.SetSummary("")
		return m, nil

	case ItemStateMsg:
		m.Inspector.SetState(msg.Ref, msg.State)
		return m, nil

	case DetailsLoadedMsg:
		m.Inspector.SetDetails(msg.Ref, msg.Details)
		return m, nil

	case WatchlistToggledMsg:
		text := "Added to watchlist: " + msg.Title
		if !msg.Added {
			text = "Removed from watchlist: " + msg.Title
		}
		return m, tea.Batch(m.setStatus(text, false), m.refreshUserData(), m.reloadItemState(msg.Ref))

	case CollectionCreatedMsg:
		cmds := []tea.Cmd{m.setStatus("Created collection: "+msg.Collection.Name, false), m.refreshUserData()}
		if msg.Pending != nil {
			cmds = append(cmds, AddToCollectionCmd(m.svc.Collections, msg.Collection.ID, msg.Collection.Name, *msg.Pending))
		}
		return m, tea.Batch(cmds...)

	case AddedToCollectionMsg:
		return m, tea.Batch(m.setStatus(fmt.Sprintf("Added %s to %s", msg.Title, msg.Collection), false), m.refreshUserData())

	case ReviewSubmittedMsg:
		text := fmt.Sprintf("Rated %s %d/10", msg.Title, msg.Rating)
		return m, tea.Batch(m.setStatus(text, false), m.refreshUserData(), m.reloadItemState(msg.Ref))

	case OpenedMsg:
		return m, m.setStatus("Opened "+msg.Title+" in browser", false)

	case UserLoadedMsg:
		m.User = ""
		if msg.Err == nil {
			m.User = msg.User.Email
			if m.User == "" {
				m.User = msg.User.ID
			}
		}
		return m, nil

	case SignedOutMsg:
		m.User = ""
		m.State = StateBrowsing
		return m, tea.Batch(m.setStatus("Signed out", false), m.refreshUserData(), m.syncInspector())

	case ChangeMsg:
		return m, tea.Batch(m.refreshUserData(), m.reloadInspectorState(), WaitForChangeCmd(m.svc.Changes))

	case ErrMsg:
		return m, m.setStatus(msg.Error(), true)

	case StatusMsg:
		return m, m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		if msg.ID == m.statusID {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil
	}

	return m, nil
}

// setStatus shows a transient notification
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusID++
	m.StatusMsg = text
	m.StatusIsErr = isErr
	d := 3 * time.Second
	if isErr {
		d = 6 * time.Second
	}
	return ClearStatusCmd(m.statusID, d)
}

// setView switches the content area and resets its columns
func (m *Model) setView(v ViewKind) {
	m.CurrentView = v
	m.gen++
	m.Active = 0

	switch v {
	case ViewDashboard:
		m.Columns = []*components.ListColumn{
			components.NewListColumn("Trending Movies"),
			components.NewListColumn("Popular Series"),
			components.NewListColumn("Trending Games"),
		}
	case ViewList:
		m.Columns = []*components.ListColumn{components.NewListColumn(listLabel(m.List))}
	case ViewSearch:
		m.Columns = []*components.ListColumn{components.NewListColumn("Results")}
	case ViewWatchlist:
		m.Columns = []*components.ListColumn{components.NewListColumn("Watchlist")}
	case ViewCollections:
		m.openCollection = ""
		m.Columns = []*components.ListColumn{
			components.NewListColumn("Collections"),
			components.NewListColumn("Items"),
		}
	case ViewReviews:
		m.Columns = []*components.ListColumn{components.NewListColumn("My Reviews")}
	}
	for _, c := range m.Columns {
		c.SetSpinnerFrame(m.SpinnerFrame)
	}
	m.Inspector.SetRow(nil)
	m.updateLayout()
}

// loadView fetches the data of the current view
func (m *Model) loadView() tea.Cmd {
	switch m.CurrentView {
	case ViewDashboard:
		for _, c := range m.Columns {
			c.SetLoading(true)
		}
		return LoadDashboardCmd(m.svc.Catalog, m.gen)
	case ViewList:
		m.Columns[0].SetLoading(true)
		return LoadCardsCmd(m.svc.Catalog, m.gen, m.List, m.Page)
	case ViewSearch:
		if q := m.Omnibar.Query(); q != "" {
			m.Columns[0].SetLoading(true)
			m.Omnibar.SetLoading(true)
			return SearchCmd(m.svc.Catalog, m.gen, q)
		}
		return nil
	case ViewWatchlist:
		m.Columns[0].SetLoading(true)
		return LoadWatchlistCmd(m.svc.Watchlist, m.gen)
	case ViewCollections:
		m.Columns[0].SetLoading(true)
		cmds := []tea.Cmd{LoadCollectionsCmd(m.svc.Collections, m.gen)}
		if m.openCollection != "" {
			cmds = append(cmds, LoadCollectionItemsCmd(m.svc.Collections, m.gen, m.openCollection))
		}
		return tea.Batch(cmds...)
	case ViewReviews:
		m.Columns[0].SetLoading(true)
		return LoadReviewsCmd(m.svc.Reviews, m.gen)
	}
	return nil
}

// refreshUserData refetches the current view if it shows user data, and the
// collection list used by the picker. Rows stay on screen while refetching.
func (m *Model) refreshUserData() tea.Cmd {
	cmds := []tea.Cmd{LoadCollectionsCmd(m.svc.Collections, m.gen)}
	switch m.CurrentView {
	case ViewWatchlist:
		cmds = append(cmds, LoadWatchlistCmd(m.svc.Watchlist, m.gen))
	case ViewCollections:
		if m.openCollection != "" {
			cmds = append(cmds, LoadCollectionItemsCmd(m.svc.Collections, m.gen, m.openCollection))
		}
	case ViewReviews:
		cmds = append(cmds, LoadReviewsCmd(m.svc.Reviews, m.gen))
	}
	return tea.Batch(cmds...)
}

// openTarget switches to the view a sidebar item points at
func (m *Model) openTarget(target string) tea.Cmd {
	switch {
	case target == targetDashboard:
		m.setView(ViewDashboard)
	case target == targetSearch:
		m.setView(ViewSearch)
		m.Focus = PaneMain
		m.applyFocus()
		return tea.Batch(m.loadView(), m.Omnibar.Focus())
	case target == targetWatchlist:
		m.setView(ViewWatchlist)
	case target == targetCollections:
		m.setView(ViewCollections)
	case target == targetReviews:
		m.setView(ViewReviews)
	case strings.HasPrefix(target, listTargetPrefix):
		m.List = service.List(strings.TrimPrefix(target, listTargetPrefix))
		m.Page = 1
		m.Pages = 0
		m.setView(ViewList)
	default:
		return nil
	}
	m.Focus = PaneMain
	m.applyFocus()
	return m.loadView()
}

// ActiveColumn returns the focused content column
func (m Model) ActiveColumn() *components.ListColumn {
	if m.Active < len(m.Columns) {
		return m.Columns[m.Active]
	}
	return nil
}

// selectedRow returns the highlighted row of the focused column
func (m Model) selectedRow() (components.Row, bool) {
	if col := m.ActiveColumn(); col != nil {
		return col.Selected()
	}
	return components.Row{}, false
}

// selectedMedia returns the highlighted row if it is a catalog item
func (m Model) selectedMedia() (components.Row, bool) {
	row, ok := m.selectedRow()
	if !ok || !row.IsMedia() {
		return components.Row{}, false
	}
	return row, true
}

func (m *Model) applyFocus() {
	m.Sidebar.SetFocused(m.Focus == PaneSidebar)
	for i, c := range m.Columns {
		c.SetFocused(m.Focus == PaneMain && i == m.Active && !m.Omnibar.IsFocused())
	}
}

// syncInspector shows the highlighted row and loads the user's state for it
func (m *Model) syncInspector() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		m.Inspector.SetRow(nil)
		return nil
	}
	if row.CollectionID != "" && !row.IsMedia() {
		for i := range m.collections {
			if m.collections[i].ID == row.CollectionID {
				c := m.collections[i]
				m.Inspector.SetCollection(&c)
				return nil
			}
		}
	}

	prev, hadPrev := m.Inspector.Ref()
	m.Inspector.SetRow(&row)
	if !row.IsMedia() || (hadPrev && prev == row.Ref) {
		return nil
	}
	return LoadItemStateCmd(m.svc.Watchlist, m.svc.Reviews, row.Ref)
}

func (m *Model) reloadItemState(ref domain.MediaRef) tea.Cmd {
	if cur, ok := m.Inspector.Ref(); ok && cur == ref {
		return LoadItemStateCmd(m.svc.Watchlist, m.svc.Reviews, ref)
	}
	return nil
}

func (m *Model) reloadInspectorState() tea.Cmd {
	if ref, ok := m.Inspector.Ref(); ok {
		return LoadItemStateCmd(m.svc.Watchlist, m.svc.Reviews, ref)
	}
	return nil
}

// Row builders for user data views

func watchlistRows(entries []domain.WatchlistEntry) []components.Row {
	rows := make([]components.Row, len(entries))
	for i, e := range entries {
		rows[i] = components.Row{
			Title:  e.Title,
			Detail: e.Kind.Label(),
			Marker: "●",
			Ref:    e.Ref(),
		}
	}
	return rows
}

func collectionRows(collections []domain.Collection) []components.Row {
	rows := make([]components.Row, len(collections))
	for i, c := range collections {
		rows[i] = components.Row{
			Title:        c.Name,
			Detail:       strconv.Itoa(c.ItemCount),
			CollectionID: c.ID,
		}
	}
	return rows
}

func collectionItemRows(items []domain.CollectionItem) []components.Row {
	rows := make([]components.Row, len(items))
	for i, it := range items {
		rows[i] = components.Row{
			Title:        it.Title,
			Detail:       it.Kind.Label(),
			Ref:          it.Ref(),
			CollectionID: it.CollectionID,
		}
	}
	return rows
}

func reviewRows(reviews []domain.Review) []components.Row {
	rows := make([]components.Row, len(reviews))
	for i, r := range reviews {
		title := r.Comment
		if title == "" {
			title = r.Ref().Kind.Label() + " #" + strconv.FormatInt(r.ExternalID, 10)
		}
		rows[i] = components.Row{
			Title:  title,
			Detail: fmt.Sprintf("%d/10", r.Rating),
			Marker: "★",
			Ref:    r.Ref(),
		}
	}
	return rows
}
