// Package login implements the QR login state machine. The session does no
// I/O of its own: the UI's turn loop asks it when to fetch or poll and
// feeds the responses back in, so exactly one network operation per session
// is in flight and late responses from a discarded challenge are ignored.
package login

import (
	"errors"
	"time"

	"bilitui/internal/bili"
	"bilitui/internal/credential"
)

// ErrProtocolViolation means the platform reported a successful scan
// without supplying the mandatory session cookies.
var ErrProtocolViolation = errors.New("login succeeded without session cookies")

// State is the session's visible state.
type State int

const (
	StateIdle State = iota
	StateAwaitingChallenge
	StateWaiting
	StateScanned
	StateSucceeded
	StateExpired
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingChallenge:
		return "awaiting challenge"
	case StateWaiting:
		return "waiting for scan"
	case StateScanned:
		return "scanned"
	case StateSucceeded:
		return "succeeded"
	case StateExpired:
		return "expired"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can occur.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateExpired || s == StateFailed
}

const defaultPollInterval = 2 * time.Second

// Session drives one login attempt. Not safe for concurrent use; it is
// owned by the single-threaded UI loop.
type Session struct {
	interval time.Duration
	now      func() time.Time

	state     State
	challenge *bili.QrChallenge
	busy      bool

	lastSample time.Time
	haveSample bool

	err         error
	lastPollErr error
	unknownCode int
	haveUnknown bool
	creds       credential.Credentials
}

// NewSession returns an idle session polling at the given interval
// (the platform's expected 2s cadence when zero).
func NewSession(interval time.Duration) *Session {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Session{interval: interval, now: time.Now}
}

// State returns the current visible state.
func (s *Session) State() State { return s.state }

// Err returns the diagnostic attached to StateFailed.
func (s *Session) Err() error { return s.err }

// LastPollErr returns the most recent transport error from a poll sample.
// Poll transport failures are surfaced but do not end the attempt.
func (s *Session) LastPollErr() error { return s.lastPollErr }

// Challenge returns the active challenge, nil before one is obtained.
func (s *Session) Challenge() *bili.QrChallenge { return s.challenge }

// UnknownCode returns the raw platform code of the last unrecognized poll
// status, retained for display.
func (s *Session) UnknownCode() (int, bool) { return s.unknownCode, s.haveUnknown }

// Credentials returns the extracted identity once StateSucceeded.
func (s *Session) Credentials() (credential.Credentials, bool) {
	if s.state != StateSucceeded {
		return credential.Credentials{}, false
	}
	return s.creds, true
}

// Begin starts (or restarts) a login attempt. It reports whether the
// caller should issue a challenge fetch: false means one is already in
// flight and the call is ignored. Restarting mid-poll discards the current
// challenge unconditionally; the discarded challenge's late responses are
// dropped by key comparison in ApplyPoll.
func (s *Session) Begin() bool {
	if s.state == StateAwaitingChallenge {
		return false
	}
	s.state = StateAwaitingChallenge
	s.challenge = nil
	s.busy = false
	s.haveSample = false
	s.err = nil
	s.lastPollErr = nil
	s.haveUnknown = false
	s.creds = credential.Credentials{}
	return true
}

// ApplyChallenge feeds the result of the challenge fetch issued after
// Begin. A transport failure is terminal for this attempt.
func (s *Session) ApplyChallenge(ch *bili.QrChallenge, err error) {
	if s.state != StateAwaitingChallenge {
		return
	}
	if err != nil {
		s.state = StateFailed
		s.err = err
		return
	}
	s.challenge = ch
	s.state = StateWaiting
	s.haveSample = false
}

// NextPoll reports whether a status sample should be issued now, returning
// the challenge key to poll with. Samples are suppressed while one is in
// flight and until the interval has elapsed since the end of the previous
// sample; terminal states never poll.
func (s *Session) NextPoll(now time.Time) (string, bool) {
	if s.busy {
		return "", false
	}
	if s.state != StateWaiting && s.state != StateScanned {
		return "", false
	}
	if s.haveSample && now.Sub(s.lastSample) < s.interval {
		return "", false
	}
	s.busy = true
	return s.challenge.Key, true
}

// ApplyPoll feeds a completed status sample back into the machine. Samples
// for a key other than the active challenge's are stale and dropped.
func (s *Session) ApplyPoll(key string, res *bili.QrPollResult, err error) {
	if s.challenge == nil || key != s.challenge.Key {
		return
	}
	if s.state != StateWaiting && s.state != StateScanned {
		return
	}

	s.busy = false
	s.lastSample = s.now()
	s.haveSample = true

	if err != nil {
		s.lastPollErr = err
		return
	}
	s.lastPollErr = nil

	switch res.Data.Status() {
	case bili.PollWaiting:
		s.state = StateWaiting
	case bili.PollScanned:
		s.state = StateScanned
	case bili.PollExpired:
		s.state = StateExpired
	case bili.PollSuccess:
		creds, ok := credential.FromCookies(res.Cookies, res.Data.RefreshToken)
		if !ok {
			s.state = StateFailed
			s.err = ErrProtocolViolation
			return
		}
		s.creds = creds
		s.state = StateSucceeded
	case bili.PollUnknown:
		// Not a transition; keep the code for the status line.
		s.unknownCode = res.Data.Code
		s.haveUnknown = true
	}
}
