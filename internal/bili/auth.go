package bili

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// QrChallenge is one QR login attempt: the URL to render as a QR code and
// the opaque key used to poll its status. Challenges are single-use; after
// expiry or success a fresh one must be generated.
type QrChallenge struct {
	URL string `json:"url"`
	Key string `json:"qrcode_key"`
}

// QrPollData is the payload of one poll sample.
type QrPollData struct {
	URL          string `json:"url"`
	RefreshToken string `json:"refresh_token"`
	Timestamp    int64  `json:"timestamp"`
	Code         int    `json:"code"`
	Message      string `json:"message"`
}

// PollStatus classifies the platform's poll code.
type PollStatus int

const (
	PollWaiting PollStatus = iota
	PollScanned
	PollSuccess
	PollExpired
	// PollUnknown covers codes not enumerated above; the raw code stays
	// available on QrPollData for diagnostics.
	PollUnknown
)

// Status maps the platform code to a PollStatus. The mapping is total:
// anything unrecognized is PollUnknown, not an error.
func (d QrPollData) Status() PollStatus {
	switch d.Code {
	case 86101:
		return PollWaiting
	case 86090:
		return PollScanned
	case 0:
		return PollSuccess
	case 86038:
		return PollExpired
	default:
		return PollUnknown
	}
}

// QrPollResult is one discrete status sample. On success Cookies carries
// the Set-Cookie values needed to build credentials.
type QrPollResult struct {
	Data     QrPollData
	Cookies  []*http.Cookie
	IssuedAt time.Time
}

// GenerateQr requests a new login challenge from the passport host.
func (c *Client) GenerateQr(ctx context.Context) (*QrChallenge, error) {
	var ch QrChallenge
	if err := c.get(ctx, c.passportBase, "/x/passport-login/web/qrcode/generate", "", &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// PollQr samples the status of a challenge. The session cookies arrive
// out-of-band as Set-Cookie headers, so this bypasses the envelope helper
// to keep the raw response in hand.
func (c *Client) PollQr(ctx context.Context, key string) (*QrPollResult, error) {
	path := "/x/passport-login/web/qrcode/poll"
	query := url.Values{"qrcode_key": {key}}.Encode()

	resp, err := c.rest.R().SetContext(ctx).Get(c.passportBase + path + "?" + query)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("api %s returned status %d", path, resp.StatusCode())
	}
	env, err := decodeEnvelope(resp.Body(), path)
	if err != nil {
		return nil, err
	}
	if env.Code != 0 {
		return nil, &APIError{Code: env.Code, Message: env.Message}
	}
	var data QrPollData
	if err := decodeData(env, path, &data); err != nil {
		return nil, err
	}
	return &QrPollResult{
		Data:     data,
		Cookies:  resp.Cookies(),
		IssuedAt: time.Now(),
	}, nil
}
