// Package ui provides the Bubble Tea terminal interface for bilitui.
//
// # Architecture
//
// Model is the root application state. All mutation happens on the Update
// goroutine: network calls run as tea.Cmd closures that deliver typed
// messages (challengeMsg, pollMsg, homeMsg, ...) back into Update, so the
// rest of the program sees a single-threaded turn loop.
//
// # Views
//
//   - Login: renders the QR challenge as half-block art and drives the
//     login session on the 2-second tick; the status line follows the
//     poll state, including the raw code for unrecognized statuses
//   - Home: recommendation feed
//   - Search: typed video search behind a bubbles textinput
//   - History / Dynamic: cookie-authenticated feeds, gated on login
//
// # Login flow
//
// The tick message asks the login session whether a poll sample is due;
// the session's own pacing and busy flag guarantee at most one request in
// flight and at most one sample per interval, and a restarted challenge
// drops late responses by key comparison. On success the credentials are
// installed in the state store and API client, persisted via a command,
// and the view switches to Home.
//
// # Keys
//
// 1-4 switch views, / focuses search, enter plays the selection through
// mpv, r refreshes (a new QR code on the login view), T cycles the theme
// and persists it to prefs, q or ctrl+c quits.
package ui
