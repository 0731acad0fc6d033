package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/luxury-retail/productlist/internal/catalog"
	"github.com/luxury-retail/productlist/internal/offline"
	"github.com/luxury-retail/productlist/internal/prefs"
	"github.com/luxury-retail/productlist/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewProducts View = iota
	ViewLogs
)

// Controller is the product list behavior the UI drives. *app.Controller implements it.
type Controller interface {
	State() *state.Store
	Platform() string
	SetSearch(query string)
	SetCategory(category string)
	SelectProduct(ctx context.Context, p catalog.Product) error
	CaptureProductPhoto(ctx context.Context) state.Notice
	ShowLocation(ctx context.Context) state.Notice
	Drain(ctx context.Context) (offline.Result, error)
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller Controller
	PollTick   time.Duration
	ThemeName  string
	PrefsPath  string
	LogPath    string
	// Embedded reports that selections are posted to a container app.
	Embedded bool
	Now      func() time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	controller Controller
	prefsPath  string
	logPath    string
	embedded   bool
	pollTick   time.Duration
	now        func() time.Time
	keys       keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	// Data state
	snapshot state.ViewState
	view     catalog.View
	platform string

	// Product list state
	selectedRow int
	offset      int
	search      textinput.Model
	searching   bool
	pending     string // action in flight
	status      string // outcome of the last action

	// Log state
	logViewport viewport.Model
	logState    logState

	modal    Modal
	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Noir"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	search := textinput.New()
	search.Placeholder = "Search products..."
	search.Prompt = "/ "
	search.CharLimit = 64

	m := Model{
		ctx:         ctx,
		controller:  opts.Controller,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		embedded:    opts.Embedded,
		pollTick:    pollTick,
		now:         now,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: ViewProducts,
		search:      search,
		logState:    logState{follow: true},
		platform:    opts.Controller.Platform(),
	}
	m.refresh()
	m.search.SetValue(m.snapshot.SearchQuery)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.pollTick),
		fetchSnapshotCmd(m.controller.State()),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.updateLogViewport()
		m.clampSelection()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(state.ViewState(msg))
		return m, nil

	case noticeMsg:
		m.pending = ""
		m.modal = newNoticeModal(state.Notice(msg))
		m.refresh()
		return m, nil

	case navigatedMsg:
		m.pending = ""
		if msg.err != nil {
			m.modal = newNoticeModal(state.Notice{
				Kind:    state.NoticeError,
				Title:   "Navigation",
				Message: "Failed to open product: " + msg.err.Error(),
				Err:     msg.err,
			})
			return m, nil
		}
		m.status = fmt.Sprintf("Opened %s %s", msg.product.Brand, msg.product.Name)
		return m, nil

	case drainedMsg:
		m.pending = ""
		if msg.err != nil {
			m.status = "Sync failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("Synced %d of %d queued, %d remaining",
				msg.result.Replayed, msg.result.Attempted, msg.result.Remaining)
		}
		m.refresh()
		return m, nil

	case logBatchMsg:
		m.handleLogBatch(msg)
		return m, nil
	}

	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		m.currentView = ViewLogs
		m.logState.lastRefresh = time.Time{}
		cmd := m.refreshLogs()
		return m, cmd

	case key.Matches(msg, m.keys.Escape):
		if m.currentView == ViewLogs {
			m.currentView = ViewProducts
			return m, nil
		}
		if m.snapshot.SearchQuery != "" {
			m.search.SetValue("")
			m.controller.SetSearch("")
			m.refresh()
		}
		m.status = ""
		return m, nil
	}

	switch m.currentView {
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleProductsKey(msg)
	}
}

// handleProductsKey processes keyboard input for the product list.
func (m Model) handleProductsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.NextCategory):
		m.cycleCategory(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevCategory):
		m.cycleCategory(-1)
		return m, nil

	case key.Matches(msg, m.keys.Camera):
		if m.pending != "" {
			return m, nil
		}
		m.pending = "Opening camera..."
		return m, actionCmd(m.ctx, m.controller.CaptureProductPhoto)

	case key.Matches(msg, m.keys.Location):
		if m.pending != "" {
			return m, nil
		}
		m.pending = "Locating..."
		return m, actionCmd(m.ctx, m.controller.ShowLocation)

	case key.Matches(msg, m.keys.Sync):
		if m.pending != "" {
			return m, nil
		}
		m.pending = "Syncing..."
		return m, drainCmd(m.ctx, m.controller)

	case key.Matches(msg, m.keys.Select):
		p, ok := m.selectedProduct()
		if !ok || m.pending != "" {
			return m, nil
		}
		m.pending = "Opening " + p.Name + "..."
		return m, selectCmd(m.ctx, m.controller, p)
	}

	m.moveSelection(msg)
	return m, nil
}

// handleSearchKey edits the search query. The filter follows every keystroke.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.controller.SetSearch("")
		m.refresh()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if query := m.search.Value(); query != m.snapshot.SearchQuery {
		m.controller.SetSearch(query)
		m.refresh()
		m.selectedRow = 0
		m.offset = 0
	}
	return m, cmd
}

// cycleCategory moves the category chip selection and remembers it.
func (m *Model) cycleCategory(step int) {
	next := catalog.NextCategory(m.view.Categories, m.snapshot.SelectedCategory, step)
	m.controller.SetCategory(next)
	m.refresh()
	m.selectedRow = 0
	m.offset = 0
	m.savePrefs()
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{
		Theme:    m.theme.Name,
		Category: m.snapshot.SelectedCategory,
	})
}

// refresh re-reads the controller state immediately.
func (m *Model) refresh() {
	m.applySnapshot(m.controller.State().Snapshot())
}

func (m *Model) applySnapshot(s state.ViewState) {
	m.snapshot = s
	m.view = s.View()
	m.clampSelection()
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{fetchSnapshotCmd(m.controller.State())}

	if m.currentView == ViewLogs && m.logState.follow {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.snapshot.IsOffline() {
		b.WriteString(m.renderOfflineBanner())
		b.WriteString("\n")
	}

	switch m.currentView {
	case ViewLogs:
		b.WriteString(m.renderLogs())
	default:
		b.WriteString(m.renderCommandBar())
		b.WriteString("\n")
		b.WriteString(m.renderProducts())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// contentHeight is the number of rows left for the active view.
func (m Model) contentHeight() int {
	h := m.height - chromeLines
	if m.snapshot.IsOffline() {
		h--
	}
	return maxInt(h, 1)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.ViewState

type noticeMsg state.Notice

type navigatedMsg struct {
	product catalog.Product
	err     error
}

type drainedMsg struct {
	result offline.Result
	err    error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func actionCmd(ctx context.Context, run func(context.Context) state.Notice) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		return noticeMsg(run(ctx))
	}
}

func selectCmd(ctx context.Context, c Controller, p catalog.Product) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		return navigatedMsg{product: p, err: c.SelectProduct(ctx, p)}
	}
}

func drainCmd(ctx context.Context, c Controller) tea.Cmd {
	return func() tea.Msg {
		res, err := c.Drain(ctx)
		return drainedMsg{result: res, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Controller == nil {
		return errors.New("ui: controller required")
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
