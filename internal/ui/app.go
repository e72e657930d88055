package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"bilitui/internal/bili"
	"bilitui/internal/credential"
	"bilitui/internal/login"
	"bilitui/internal/player"
	"bilitui/internal/prefs"
	"bilitui/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewLogin View = iota
	ViewHome
	ViewSearch
	ViewHistory
	ViewDynamic
)

// Options configures the UI.
type Options struct {
	Context     context.Context
	Client      *bili.Client
	Store       *state.Store
	Credentials *credential.Store
	Player      *player.Launcher
	Logger      *zap.Logger
	PollTick    time.Duration
	ThemeName   string
	PrefsPath   string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    *bili.Client
	store     *state.Store
	credStore *credential.Store
	player    *player.Launcher
	logger    *zap.Logger
	pollTick  time.Duration
	prefsPath string

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	statusMsg   string
	playing     bool

	// Login state
	session *login.Session
	qrArt   string

	// Feed state
	homeItems []bili.VideoItem
	homeBusy  bool

	searchInput textinput.Model
	searchItems []bili.SearchVideoItem
	searchBusy  bool
	searching   bool

	historyItems []bili.HistoryItem
	historyBusy  bool

	dynamicItems []bili.DynamicItem
	dynamicBusy  bool

	selected map[View]int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = 2 * time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	input := textinput.New()
	input.Placeholder = "search videos"
	input.CharLimit = 120

	view := ViewLogin
	if _, ok := opts.Store.Credentials(); ok {
		view = ViewHome
	}

	return Model{
		ctx:         ctx,
		client:      opts.Client,
		store:       opts.Store,
		credStore:   opts.Credentials,
		player:      opts.Player,
		logger:      logger,
		pollTick:    pollTick,
		prefsPath:   prefsPath,
		theme:       GetTheme(opts.ThemeName),
		currentView: view,
		session:     login.NewSession(pollTick),
		homeBusy:    view == ViewHome,
		searchInput: input,
		selected:    make(map[View]int),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	switch m.currentView {
	case ViewLogin:
		if m.session.Begin() {
			cmds = append(cmds, m.fetchChallengeCmd())
		}
	case ViewHome:
		cmds = append(cmds, m.fetchHomeCmd())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case challengeMsg:
		m.session.ApplyChallenge(msg.ch, msg.err)
		if msg.err != nil {
			m.logger.Warn("qr challenge fetch failed", zap.Error(msg.err))
			m.store.SetError(msg.err)
			return m, nil
		}
		art, err := renderQR(msg.ch.URL)
		if err != nil {
			m.logger.Warn("qr render failed", zap.Error(err))
			art = msg.ch.URL // fall back to the raw scan URL
		}
		m.qrArt = art
		return m, nil

	case pollMsg:
		return m.handlePoll(msg)

	case credentialsSavedMsg:
		if msg.err != nil {
			m.logger.Error("persist credentials failed", zap.Error(msg.err))
			m.statusMsg = "could not save login: " + msg.err.Error()
		}
		return m, nil

	case homeMsg:
		m.homeBusy = false
		if msg.err != nil {
			m.feedError("recommendations", msg.err)
			return m, nil
		}
		m.homeItems = msg.items
		m.statusMsg = ""
		return m, nil

	case searchMsg:
		m.searchBusy = false
		if msg.err != nil {
			m.feedError("search", msg.err)
			return m, nil
		}
		m.searchItems = msg.data.Result
		m.selected[ViewSearch] = 0
		m.statusMsg = ""
		return m, nil

	case historyMsg:
		m.historyBusy = false
		if msg.err != nil {
			m.feedError("history", msg.err)
			return m, nil
		}
		m.historyItems = msg.data.List
		m.statusMsg = ""
		return m, nil

	case dynamicMsg:
		m.dynamicBusy = false
		if msg.err != nil {
			m.feedError("dynamic feed", msg.err)
			return m, nil
		}
		m.dynamicItems = msg.data.Items
		m.statusMsg = ""
		return m, nil

	case playerDoneMsg:
		m.playing = false
		if msg.err != nil {
			m.logger.Warn("player exited with error", zap.Error(msg.err))
			m.statusMsg = "player: " + msg.err.Error()
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) feedError(what string, err error) {
	m.logger.Warn("fetch failed", zap.String("feed", what), zap.Error(err))
	m.store.SetError(err)
	m.statusMsg = what + ": " + err.Error()
}

// handleTick drives the login poll cadence and reschedules itself. The
// session decides whether a sample is due; ticks while a call is in
// flight or inside the interval are dropped, never queued.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.currentView == ViewLogin {
		if key, ok := m.session.NextPoll(now); ok {
			cmds = append(cmds, m.pollCmd(key))
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handlePoll(msg pollMsg) (tea.Model, tea.Cmd) {
	m.session.ApplyPoll(msg.key, msg.res, msg.err)
	if msg.err != nil {
		m.logger.Warn("qr poll failed", zap.Error(msg.err))
		m.store.SetError(msg.err)
		return m, nil
	}

	switch m.session.State() {
	case login.StateSucceeded:
		creds, _ := m.session.Credentials()
		return m.completeLogin(creds)
	case login.StateFailed:
		m.logger.Error("login failed", zap.Error(m.session.Err()))
	case login.StateExpired:
		m.logger.Info("qr challenge expired")
	}
	return m, nil
}

// completeLogin installs the new identity everywhere it is consumed and
// moves to the home feed.
func (m Model) completeLogin(creds credential.Credentials) (tea.Model, tea.Cmd) {
	m.store.SetCredentials(creds)
	m.client.SetCredentials(creds)
	m.logger.Info("login succeeded", zap.String("user_id", creds.DedeUserID))

	m.currentView = ViewHome
	m.homeBusy = true
	return m, tea.Batch(m.saveCredentialsCmd(creds), m.fetchHomeCmd())
}
