package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"bilitui/internal/bili"
	"bilitui/internal/credential"
)

type tickMsg time.Time

type challengeMsg struct {
	ch  *bili.QrChallenge
	err error
}

type pollMsg struct {
	key string
	res *bili.QrPollResult
	err error
}

type credentialsSavedMsg struct {
	err error
}

type homeMsg struct {
	items []bili.VideoItem
	err   error
}

type searchMsg struct {
	data *bili.SearchData
	err  error
}

type historyMsg struct {
	data *bili.HistoryData
	err  error
}

type dynamicMsg struct {
	data *bili.DynamicFeedData
	err  error
}

type playerDoneMsg struct {
	err error
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchChallengeCmd() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		ch, err := client.GenerateQr(ctx)
		return challengeMsg{ch: ch, err: err}
	}
}

func (m Model) pollCmd(key string) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		res, err := client.PollQr(ctx, key)
		return pollMsg{key: key, res: res, err: err}
	}
}

func (m Model) saveCredentialsCmd(creds credential.Credentials) tea.Cmd {
	store := m.credStore
	return func() tea.Msg {
		return credentialsSavedMsg{err: store.Save(creds)}
	}
}

func (m Model) fetchHomeCmd() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		items, err := client.Recommend(ctx, 20)
		return homeMsg{items: items, err: err}
	}
}

func (m Model) searchCmd(keyword string) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		data, err := client.SearchVideos(ctx, keyword, 1)
		return searchMsg{data: data, err: err}
	}
}

func (m Model) fetchHistoryCmd() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		data, err := client.History(ctx, nil)
		return historyMsg{data: data, err: err}
	}
}

func (m Model) fetchDynamicCmd() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		data, err := client.DynamicFeed(ctx, "")
		return dynamicMsg{data: data, err: err}
	}
}

// playCmd launches the external player and reports back when it exits.
// The launcher scopes the cookie-jar lifetime to the player process.
func (m Model) playCmd(bvid string) tea.Cmd {
	ctx, launcher, store := m.ctx, m.player, m.store
	return func() tea.Msg {
		var creds *credential.Credentials
		if c, ok := store.Credentials(); ok {
			creds = &c
		}
		return playerDoneMsg{err: launcher.Play(ctx, bvid, creds)}
	}
}
