package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"bilitui/internal/login"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(m.renderHeader(styles))
	b.WriteByte('\n')

	switch m.currentView {
	case ViewLogin:
		b.WriteString(m.renderLogin(styles))
	case ViewHome:
		b.WriteString(m.renderHome(styles))
	case ViewSearch:
		b.WriteString(m.renderSearch(styles))
	case ViewHistory:
		b.WriteString(m.renderHistory(styles))
	case ViewDynamic:
		b.WriteString(m.renderDynamic(styles))
	}

	b.WriteByte('\n')
	b.WriteString(m.renderFooter(styles))
	return b.String()
}

var viewTitles = map[View]string{
	ViewLogin:   "Login",
	ViewHome:    "Home",
	ViewSearch:  "Search",
	ViewHistory: "History",
	ViewDynamic: "Dynamic",
}

func (m Model) renderHeader(styles Styles) string {
	tabs := make([]string, 0, 4)
	for i, v := range []View{ViewHome, ViewSearch, ViewHistory, ViewDynamic} {
		label := fmt.Sprintf("%d %s", i+1, viewTitles[v])
		if v == m.currentView {
			tabs = append(tabs, styles.AccentText.Render(label))
		} else {
			tabs = append(tabs, styles.MutedText.Render(label))
		}
	}

	identity := styles.MutedText.Render("not logged in")
	if sess := m.store.Session(); sess.LoggedIn {
		identity = styles.SuccessText.Render("uid " + sess.Credentials.DedeUserID)
	}

	left := styles.AccentText.Render("bilitui") + "  " + strings.Join(tabs, "  ")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(identity)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + identity
}

func (m Model) renderFooter(styles Styles) string {
	help := "enter play · / search · r refresh · T theme · q quit"
	if m.currentView == ViewLogin {
		help = "r new QR code · q quit"
	}
	line := styles.MutedText.Render(help)
	if m.statusMsg != "" {
		line += "  " + styles.WarningText.Render(m.statusMsg)
	}
	return line
}

func (m Model) renderLogin(styles Styles) string {
	var body string
	var status string

	switch m.session.State() {
	case login.StateIdle, login.StateAwaitingChallenge:
		status = styles.WarningText.Render("requesting login QR code…")
	case login.StateWaiting:
		body = m.qrArt
		status = styles.WarningText.Render("scan with the Bilibili app")
	case login.StateScanned:
		body = m.qrArt
		status = styles.AccentText.Render("scanned, confirm on your phone")
	case login.StateSucceeded:
		status = styles.SuccessText.Render("login successful")
	case login.StateExpired:
		status = styles.DangerText.Render("QR code expired, press r for a new one")
	case login.StateFailed:
		msg := "login failed"
		if err := m.session.Err(); err != nil {
			msg = "login failed: " + err.Error()
		}
		status = styles.DangerText.Render(msg)
	}

	if code, ok := m.session.UnknownCode(); ok {
		status += "  " + styles.MutedText.Render(fmt.Sprintf("(status code %d)", code))
	}
	if err := m.session.LastPollErr(); err != nil {
		status += "  " + styles.WarningText.Render("poll: "+err.Error())
	}

	content := status
	if body != "" {
		content = body + "\n" + status
	}
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderHome(styles Styles) string {
	if m.homeBusy && len(m.homeItems) == 0 {
		return styles.MutedText.Render("loading recommendations…")
	}
	rows := make([]string, 0, len(m.homeItems))
	for _, it := range m.homeItems {
		rows = append(rows, fmt.Sprintf("%s  %-50s  %-16s  %s",
			it.FormatDuration(),
			truncate(it.Title, 50),
			truncate(it.AuthorName(), 16),
			it.FormatViews()))
	}
	return m.renderList(styles, rows, "no recommendations, press r to refresh")
}

func (m Model) renderSearch(styles Styles) string {
	var b strings.Builder
	b.WriteString(m.searchInput.View())
	b.WriteByte('\n')

	if m.searchBusy {
		b.WriteString(styles.MutedText.Render("searching…"))
		return b.String()
	}
	rows := make([]string, 0, len(m.searchItems))
	for _, it := range m.searchItems {
		rows = append(rows, fmt.Sprintf("%-50s  %-16s  %s",
			truncate(it.DisplayTitle(), 50),
			truncate(it.Author, 16),
			it.FormatPlay()))
	}
	b.WriteString(m.renderList(styles, rows, "press / and type to search"))
	return b.String()
}

func (m Model) renderHistory(styles Styles) string {
	if m.historyBusy && len(m.historyItems) == 0 {
		return styles.MutedText.Render("loading history…")
	}
	rows := make([]string, 0, len(m.historyItems))
	for _, it := range m.historyItems {
		marker := " "
		if !it.IsVideo() {
			marker = "·" // not playable from here
		}
		rows = append(rows, fmt.Sprintf("%s %-50s  %-16s  %s",
			marker,
			truncate(it.Title, 50),
			truncate(it.AuthorName, 16),
			it.FormatProgress()))
	}
	return m.renderList(styles, rows, "no watch history")
}

func (m Model) renderDynamic(styles Styles) string {
	if m.dynamicBusy && len(m.dynamicItems) == 0 {
		return styles.MutedText.Render("loading dynamic feed…")
	}
	rows := make([]string, 0, len(m.dynamicItems))
	for _, it := range m.dynamicItems {
		title := it.VideoTitle()
		if title == "" {
			title = "(not a video)"
		}
		rows = append(rows, fmt.Sprintf("%-16s  %-50s  %s",
			truncate(it.AuthorName(), 16),
			truncate(title, 50),
			it.VideoPlay()))
	}
	return m.renderList(styles, rows, "no dynamic feed entries")
}

// renderList renders rows with the current selection highlighted, scrolled
// so the selection stays visible.
func (m Model) renderList(styles Styles, rows []string, empty string) string {
	if len(rows) == 0 {
		return styles.MutedText.Render(empty)
	}

	height := m.contentHeight()
	if height < 1 {
		height = 1
	}
	sel := clamp(m.selected[m.currentView], len(rows))

	start := 0
	if sel >= height {
		start = sel - height + 1
	}
	end := start + height
	if end > len(rows) {
		end = len(rows)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		line := truncate(rows[i], m.width-2)
		if i == sel {
			b.WriteString(styles.Selected.Render("▸ " + line))
		} else {
			b.WriteString("  " + styles.Text.Render(line))
		}
		if i != end-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// contentHeight is the rows left between header and footer.
func (m Model) contentHeight() int {
	return m.height - 4
}
