package login

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"bilitui/internal/bili"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSession(clock *fakeClock) *Session {
	s := NewSession(2 * time.Second)
	s.now = clock.now
	return s
}

func challenge(key string) *bili.QrChallenge {
	return &bili.QrChallenge{URL: "https://example.com/scan?key=" + key, Key: key}
}

func pollResult(code int, cookies []*http.Cookie) *bili.QrPollResult {
	return &bili.QrPollResult{
		Data:    bili.QrPollData{Code: code, RefreshToken: "rt"},
		Cookies: cookies,
	}
}

func successCookies() []*http.Cookie {
	return []*http.Cookie{
		{Name: "SESSDATA", Value: "sess"},
		{Name: "bili_jct", Value: "csrf"},
		{Name: "DedeUserID", Value: "42"},
	}
}

// Drives the session to StateWaiting with challenge key "k".
func startPolling(t *testing.T, s *Session) {
	t.Helper()
	if !s.Begin() {
		t.Fatal("Begin returned false on idle session")
	}
	if s.State() != StateAwaitingChallenge {
		t.Fatalf("state after Begin = %v", s.State())
	}
	s.ApplyChallenge(challenge("k"), nil)
	if s.State() != StateWaiting {
		t.Fatalf("state after challenge = %v", s.State())
	}
}

// samples issues one poll cycle with the given code, advancing past the
// pacing interval first.
func sample(t *testing.T, s *Session, clock *fakeClock, code int, cookies []*http.Cookie) {
	t.Helper()
	clock.advance(3 * time.Second)
	key, ok := s.NextPoll(clock.now())
	if !ok {
		t.Fatalf("NextPoll refused in state %v", s.State())
	}
	s.ApplyPoll(key, pollResult(code, cookies), nil)
}

func TestSession_WaitingScannedSuccess(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	s := newTestSession(clock)
	startPolling(t, s)

	wantStates := []struct {
		code int
		want State
	}{
		{86101, StateWaiting},
		{86101, StateWaiting},
		{86090, StateScanned},
	}
	for _, step := range wantStates {
		sample(t, s, clock, step.code, nil)
		if s.State() != step.want {
			t.Fatalf("after code %d: state = %v, want %v", step.code, s.State(), step.want)
		}
	}

	sample(t, s, clock, 0, successCookies())
	if s.State() != StateSucceeded {
		t.Fatalf("state = %v, want StateSucceeded", s.State())
	}
	creds, ok := s.Credentials()
	if !ok || creds.SESSDATA != "sess" || creds.RefreshToken != "rt" {
		t.Fatalf("credentials = %+v, ok = %v", creds, ok)
	}

	// Terminal: no further samples are issued.
	clock.advance(time.Minute)
	if _, ok := s.NextPoll(clock.now()); ok {
		t.Fatal("NextPoll issued a sample after success")
	}
}

func TestSession_ExpiredIsTerminal(t *testing.T) {
	for _, from := range []int{86101, 86090} {
		clock := &fakeClock{t: time.Unix(1700000000, 0)}
		s := newTestSession(clock)
		startPolling(t, s)

		sample(t, s, clock, from, nil)
		sample(t, s, clock, 86038, nil)
		if s.State() != StateExpired {
			t.Fatalf("from code %d: state = %v, want StateExpired", from, s.State())
		}
		clock.advance(time.Minute)
		if _, ok := s.NextPoll(clock.now()); ok {
			t.Fatal("NextPoll issued a sample after expiry")
		}
	}
}

func TestSession_UnknownCodeIsNoOp(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	s := newTestSession(clock)
	startPolling(t, s)

	sample(t, s, clock, 86090, nil)
	sample(t, s, clock, 86123, nil)
	if s.State() != StateScanned {
		t.Fatalf("unknown code changed state to %v", s.State())
	}
	code, ok := s.UnknownCode()
	if !ok || code != 86123 {
		t.Fatalf("UnknownCode = %d, %v; want 86123, true", code, ok)
	}
}

func TestSession_SuccessWithoutCookiesIsProtocolViolation(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	s := newTestSession(clock)
	startPolling(t, s)

	sample(t, s, clock, 0, nil)
	if s.State() != StateFailed {
		t.Fatalf("state = %v, want StateFailed", s.State())
	}
	if !errors.Is(s.Err(), ErrProtocolViolation) {
		t.Fatalf("Err = %v, want ErrProtocolViolation", s.Err())
	}
	if _, ok := s.Credentials(); ok {
		t.Fatal("credentials exposed despite protocol violation")
	}
}

func TestSession_PollPacing(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	s := newTestSession(clock)
	startPolling(t, s)

	// First sample goes out immediately.
	key, ok := s.NextPoll(clock.now())
	if !ok {
		t.Fatal("first NextPoll refused")
	}
	s.ApplyPoll(key, pollResult(86101, nil), nil)

	// Within the interval only suppression, measured from the end of the
	// previous sample.
	clock.advance(time.Second)
	if _, ok := s.NextPoll(clock.now()); ok {
		t.Fatal("sample issued 1s after previous, want suppression")
	}
	clock.advance(1500 * time.Millisecond)
	if _, ok := s.NextPoll(clock.now()); !ok {
		t.Fatal("sample suppressed past the interval")
	}
}

func TestSession_NoOverlappingSamples(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	s := newTestSession(clock)
	startPolling(t, s)

	if _, ok := s.NextPoll(clock.now()); !ok {
		t.Fatal("first NextPoll refused")
	}
	// In flight: a second tick must be ignored no matter how much time
	// passes.
	clock.advance(time.Minute)
	if _, ok := s.NextPoll(clock.now()); ok {
		t.Fatal("overlapping sample issued while one is in flight")
	}
}

func TestSession_StaleResponsesIgnoredAfterRestart(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	s := newTestSession(clock)
	startPolling(t, s)

	key, ok := s.NextPoll(clock.now())
	if !ok {
		t.Fatal("NextPoll refused")
	}

	// Restart mid-poll: the in-flight challenge is discarded.
	if !s.Begin() {
		t.Fatal("Begin refused mid-poll")
	}
	s.ApplyChallenge(challenge("k2"), nil)

	// The old challenge's success arrives late and must not apply.
	s.ApplyPoll(key, pollResult(0, successCookies()), nil)
	if s.State() != StateWaiting {
		t.Fatalf("stale response applied: state = %v", s.State())
	}
}

func TestSession_BeginIgnoredWhileChallengeInFlight(t *testing.T) {
	s := NewSession(0)
	if !s.Begin() {
		t.Fatal("first Begin refused")
	}
	if s.Begin() {
		t.Fatal("second Begin accepted while challenge fetch in flight")
	}
}

func TestSession_ChallengeFailure(t *testing.T) {
	s := NewSession(0)
	s.Begin()
	wantErr := errors.New("connection refused")
	s.ApplyChallenge(nil, wantErr)
	if s.State() != StateFailed {
		t.Fatalf("state = %v, want StateFailed", s.State())
	}
	if !errors.Is(s.Err(), wantErr) {
		t.Fatalf("Err = %v, want %v", s.Err(), wantErr)
	}
	// Retry affordance: Begin works again from Failed.
	if !s.Begin() {
		t.Fatal("Begin refused after failure")
	}
}

func TestSession_PollTransportErrorDoesNotEndAttempt(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	s := newTestSession(clock)
	startPolling(t, s)

	key, ok := s.NextPoll(clock.now())
	if !ok {
		t.Fatal("NextPoll refused")
	}
	s.ApplyPoll(key, nil, errors.New("timeout"))
	if s.State() != StateWaiting {
		t.Fatalf("poll error moved state to %v", s.State())
	}
	if s.LastPollErr() == nil {
		t.Fatal("poll error not surfaced")
	}

	// Polling resumes after the interval.
	clock.advance(3 * time.Second)
	if _, ok := s.NextPoll(clock.now()); !ok {
		t.Fatal("polling did not resume after transport error")
	}
}
