package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"bilitui/internal/login"
	"bilitui/internal/prefs"
)

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The search input captures everything while focused.
	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.searchInput.Blur()
			return m, nil
		case "enter":
			keyword := strings.TrimSpace(m.searchInput.Value())
			m.searching = false
			m.searchInput.Blur()
			if keyword == "" {
				return m, nil
			}
			m.searchBusy = true
			return m, m.searchCmd(keyword)
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "T":
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name})
		}
		return m, nil

	case "r":
		return m.refreshCurrent()

	case "1":
		return m.switchView(ViewHome)
	case "2":
		return m.switchView(ViewSearch)
	case "3":
		return m.switchView(ViewHistory)
	case "4":
		return m.switchView(ViewDynamic)

	case "/":
		if m.currentView == ViewLogin {
			return m, nil
		}
		m.currentView = ViewSearch
		m.searching = true
		m.searchInput.Focus()
		return m, nil

	case "up", "k":
		m.moveSelection(-1)
		return m, nil
	case "down", "j":
		m.moveSelection(1)
		return m, nil
	case "g":
		m.selected[m.currentView] = 0
		return m, nil
	case "G":
		m.selected[m.currentView] = clamp(m.listLen(m.currentView)-1, m.listLen(m.currentView))
		return m, nil

	case "enter":
		return m.playSelected()
	}

	return m, nil
}

// refreshCurrent re-requests whatever the active view shows. On the login
// view this discards the challenge and starts over.
func (m Model) refreshCurrent() (tea.Model, tea.Cmd) {
	switch m.currentView {
	case ViewLogin:
		if m.session.Begin() {
			m.qrArt = ""
			return m, m.fetchChallengeCmd()
		}
		return m, nil
	case ViewHome:
		if !m.homeBusy {
			m.homeBusy = true
			return m, m.fetchHomeCmd()
		}
	case ViewHistory:
		if !m.historyBusy {
			m.historyBusy = true
			return m, m.fetchHistoryCmd()
		}
	case ViewDynamic:
		if !m.dynamicBusy {
			m.dynamicBusy = true
			return m, m.fetchDynamicCmd()
		}
	case ViewSearch:
		m.searching = true
		m.searchInput.Focus()
	}
	return m, nil
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	if m.currentView == ViewLogin && !m.session.State().Terminal() &&
		m.session.State() != login.StateIdle {
		// Leaving mid-login abandons the attempt; allowed, the session
		// simply stops being ticked.
		m.logger.Info("login view left mid-attempt")
	}
	m.currentView = v

	_, loggedIn := m.store.Credentials()
	switch v {
	case ViewHome:
		if len(m.homeItems) == 0 && !m.homeBusy {
			m.homeBusy = true
			return m, m.fetchHomeCmd()
		}
	case ViewSearch:
		if len(m.searchItems) == 0 {
			m.searching = true
			m.searchInput.Focus()
		}
	case ViewHistory:
		if !loggedIn {
			m.statusMsg = "history requires login"
			return m, nil
		}
		if len(m.historyItems) == 0 && !m.historyBusy {
			m.historyBusy = true
			return m, m.fetchHistoryCmd()
		}
	case ViewDynamic:
		if !loggedIn {
			m.statusMsg = "dynamic feed requires login"
			return m, nil
		}
		if len(m.dynamicItems) == 0 && !m.dynamicBusy {
			m.dynamicBusy = true
			return m, m.fetchDynamicCmd()
		}
	}
	return m, nil
}

func (m *Model) moveSelection(delta int) {
	n := m.listLen(m.currentView)
	m.selected[m.currentView] = clamp(m.selected[m.currentView]+delta, n)
}

func (m Model) listLen(v View) int {
	switch v {
	case ViewHome:
		return len(m.homeItems)
	case ViewSearch:
		return len(m.searchItems)
	case ViewHistory:
		return len(m.historyItems)
	case ViewDynamic:
		return len(m.dynamicItems)
	default:
		return 0
	}
}

// selectedBvid resolves the highlighted row to a playable video id, empty
// when the row is not a video.
func (m Model) selectedBvid() string {
	i := m.selected[m.currentView]
	switch m.currentView {
	case ViewHome:
		if i < len(m.homeItems) {
			return m.homeItems[i].Bvid
		}
	case ViewSearch:
		if i < len(m.searchItems) {
			return m.searchItems[i].Bvid
		}
	case ViewHistory:
		if i < len(m.historyItems) && m.historyItems[i].IsVideo() {
			return m.historyItems[i].History.Bvid
		}
	case ViewDynamic:
		if i < len(m.dynamicItems) && m.dynamicItems[i].IsVideo() {
			return m.dynamicItems[i].VideoBvid()
		}
	}
	return ""
}

func (m Model) playSelected() (tea.Model, tea.Cmd) {
	if m.playing {
		return m, nil
	}
	bvid := m.selectedBvid()
	if bvid == "" {
		return m, nil
	}
	m.playing = true
	m.statusMsg = "playing " + bvid
	return m, m.playCmd(bvid)
}
