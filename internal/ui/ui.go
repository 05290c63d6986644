package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tempo/internal/queries"
	"github.com/desertthunder/tempo/internal/services"
	"github.com/desertthunder/tempo/internal/session"
	"github.com/desertthunder/tempo/internal/shared"
	"github.com/desertthunder/tempo/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	LoadingView
	DashboardView
	DetailView
)

// listFocus selects which top-items list the dashboard shows.
type listFocus int

const (
	artistsFocus listFocus = iota
	tracksFocus
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	controller   *session.Controller
	engine       *tasks.StatsEngine
	timeRange    services.TimeRange
	width        int
	height       int
	data         *tasks.DashboardData
	artistList   list.Model
	trackList    list.Model
	focus        listFocus
	selected     *services.Item
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, controller *session.Controller, engine *tasks.StatsEngine) *Model {
	return &Model{
		ctx:        ctx,
		view:       LoadingView,
		controller: controller,
		engine:     engine,
		timeRange:  services.MediumTerm,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init resolves the session and starts the first dashboard load.
func (m *Model) Init() tea.Cmd {
	m.controller.Resolve()
	if _, ok := m.controller.Token(); !ok {
		m.view = LoginView
		return nil
	}
	return m.loadDashboard()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.artistList.Width() != 0 {
			m.artistList.SetSize(msg.Width-4, msg.Height-12)
		}
		if m.trackList.Width() != 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-12)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LoginView:
			return m.handleLoginKeys(msg)
		case DashboardView:
			return m.handleDashboardKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case dashboardLoadedMsg:
		m.progressChan = nil
		if msg.err != nil {
			if errors.Is(msg.err, shared.ErrNotAuthenticated) || errors.Is(msg.err, shared.ErrTokenRejected) {
				m.controller.LogOut()
				m.err = nil
				m.view = LoginView
				return m, nil
			}
			m.err = msg.err
			m.view = DashboardView
			return m, nil
		}
		m.err = nil
		m.data = msg.data
		m.buildLists()
		m.view = DashboardView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case loginOpenedMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoginView:
		return m.renderLogin()
	case LoadingView:
		return m.renderLoading()
	case DashboardView:
		return m.renderDashboard()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "o":
		url := m.controller.LoginURL()
		return m, func() tea.Msg {
			return loginOpenedMsg{err: shared.OpenBrowser(url)}
		}
	case "r":
		if _, ok := m.controller.Token(); ok {
			m.view = LoadingView
			return m, m.loadDashboard()
		}
	}
	return m, nil
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		if m.focus == artistsFocus {
			m.focus = tracksFocus
		} else {
			m.focus = artistsFocus
		}
		return m, nil
	case "1", "2", "3":
		ranges := map[string]services.TimeRange{
			"1": services.ShortTerm,
			"2": services.MediumTerm,
			"3": services.LongTerm,
		}
		m.timeRange = ranges[msg.String()]
		m.view = LoadingView
		return m, m.loadDashboard()
	case "r":
		m.view = LoadingView
		return m, m.loadDashboard()
	case "enter":
		if item := m.selectedListItem(); item != nil {
			m.selected = item
			m.view = DetailView
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.selected = nil
		m.view = DashboardView
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != DashboardView {
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case artistsFocus:
		m.artistList, cmd = m.artistList.Update(msg)
	case tracksFocus:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

// selectedListItem returns the highlighted artist or track as an [services.Item].
func (m *Model) selectedListItem() *services.Item {
	switch m.focus {
	case artistsFocus:
		if sel, ok := m.artistList.SelectedItem().(artistItem); ok {
			artist := sel.artist
			return &services.Item{Kind: services.ArtistKind, Artist: &artist}
		}
	case tracksFocus:
		if sel, ok := m.trackList.SelectedItem().(trackItem); ok {
			track := sel.track
			return &services.Item{Kind: services.TrackKind, Track: &track}
		}
	}
	return nil
}

func (m *Model) buildLists() {
	if m.data == nil || m.data.Top == nil {
		return
	}

	if m.data.Top.TopArtists != nil {
		items := make([]list.Item, len(m.data.Top.TopArtists.Items))
		for i, artist := range m.data.Top.TopArtists.Items {
			items[i] = artistItem{rank: i + 1, artist: artist}
		}
		m.artistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.artistList.Title = "Top Artists"
		m.artistList.SetShowHelp(false)
		m.artistList.SetSize(m.width-4, m.height-12)
	}

	if m.data.Top.TopTracks != nil {
		items := make([]list.Item, len(m.data.Top.TopTracks.Items))
		for i, track := range m.data.Top.TopTracks.Items {
			items[i] = trackItem{rank: i + 1, track: track}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = "Top Tracks"
		m.trackList.SetShowHelp(false)
		m.trackList.SetSize(m.width-4, m.height-12)
	}
}

func (m *Model) gate() queries.Gate {
	token, _ := m.controller.Token()
	return queries.Gate{
		Token:     token,
		Enabled:   true,
		Resolving: m.controller.IsCheckingToken(),
	}
}

func (m *Model) loadDashboard() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progress := m.progressChan
	gate := m.gate()

	load := func() tea.Msg {
		data, err := m.engine.LoadDashboard(m.ctx, gate, progress)
		close(progress)
		return dashboardLoadedMsg{data: data, err: err}
	}

	return tea.Batch(load, m.waitForProgress())
}

func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	if progress == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderLogin() string {
	title := styles.title.Render("Not logged in")
	info := fmt.Sprintf("Authorize at:\n\n  %s", m.controller.LoginURL())

	var errLine string
	if m.err != nil {
		errLine = "\n\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	helpKeys := []key.Binding{m.keys.login, m.keys.reload, m.keys.quit}
	helpView := styles.help.Render(m.help.ShortHelpView(helpKeys))

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, errLine, helpView)
}

func (m *Model) renderLoading() string {
	title := styles.title.Render("Loading Dashboard")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchProfile:
		phase = "Fetching your profile..."
	case tasks.FetchTop:
		phase = "Fetching your top artists and tracks..."
	case tasks.TallyPhase:
		phase = "Tallying genres..."
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderDashboard() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress r to retry, q to quit", m.err))
	}
	if m.data == nil {
		return styles.warn.Render("No data available\n\nPress r to retry, q to quit")
	}

	header := "Listening Dashboard"
	if m.data.User != nil && m.data.User.DisplayName != "" {
		header = fmt.Sprintf("%s's Dashboard", m.data.User.DisplayName)
	}
	title := styles.title.Render(fmt.Sprintf("%s (%s)", header, m.timeRange))

	genres := m.renderGenres()

	var listView string
	switch m.focus {
	case artistsFocus:
		listView = m.artistList.View()
	case tracksFocus:
		listView = m.trackList.View()
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.tab, m.keys.ranges, m.keys.reload, m.keys.quit}
	helpView := styles.help.Render(m.help.ShortHelpView(helpKeys))

	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, genres, listView, helpView)
}

// renderGenres draws the top five genres as proportional bars.
func (m *Model) renderGenres() string {
	if len(m.data.Genres) == 0 {
		return ""
	}

	const maxBar = 24
	top := m.data.Genres
	if len(top) > 5 {
		top = top[:5]
	}
	peak := top[0].Count

	var b strings.Builder
	for _, genre := range top {
		width := 1
		if peak > 0 {
			width = genre.Count * maxBar / peak
			if width < 1 {
				width = 1
			}
		}
		bar := styles.bar.Render(strings.Repeat("█", width))
		count := styles.ok.Render(strconv.Itoa(genre.Count))
		b.WriteString(fmt.Sprintf("%-20s %s %s\n", genre.Genre, bar, count))
	}
	return b.String()
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}

	title := styles.title.Render(m.selected.Name())

	var info string
	switch m.selected.Kind {
	case services.ArtistKind:
		artist := m.selected.Artist
		info = fmt.Sprintf(
			"Genres: %s\nPopularity: %d\nFollowers: %d\nLink: %s",
			strings.Join(artist.Genres, ", "),
			artist.Popularity,
			artist.Followers.Total,
			m.selected.Link(),
		)
	case services.TrackKind:
		track := m.selected.Track
		info = fmt.Sprintf(
			"Artists: %s\nAlbum: %s\nDuration: %s\nPopularity: %d\nLink: %s",
			services.ArtistLine(*track),
			track.Album.Name,
			shared.FormatDuration(track.DurationMS),
			track.Popularity,
			m.selected.Link(),
		)
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := styles.help.Render(m.help.ShortHelpView(helpKeys))

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
