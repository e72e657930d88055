// Package credential owns the durable login identity: extraction from the
// QR poll's cookie set, the on-disk credentials file, and the Netscape
// cookie-jar export consumed by yt-dlp.
package credential

import "net/http"

// Cookie names set by the platform on a successful login.
const (
	cookieSession   = "SESSDATA"
	cookieCSRF      = "bili_jct"
	cookieUserID    = "DedeUserID"
	cookieUserCheck = "DedeUserID__ckMd5"
)

// Credentials identifies an authenticated session. SESSDATA, BiliJCT and
// DedeUserID are mandatory; the other two fields may be absent.
type Credentials struct {
	SESSDATA        string `json:"sessdata"`
	BiliJCT         string `json:"bili_jct"`
	DedeUserID      string `json:"dede_user_id"`
	DedeUserIDCkMD5 string `json:"dede_user_id_ckmd5,omitempty"`
	RefreshToken    string `json:"refresh_token,omitempty"`
}

// FromCookies scans a cookie list for the recognized session cookies and
// builds a Credentials. It returns false when any mandatory cookie is
// missing; unrecognized names are ignored and the last value wins on
// duplicates.
func FromCookies(cookies []*http.Cookie, refreshToken string) (Credentials, bool) {
	var c Credentials
	for _, ck := range cookies {
		switch ck.Name {
		case cookieSession:
			c.SESSDATA = ck.Value
		case cookieCSRF:
			c.BiliJCT = ck.Value
		case cookieUserID:
			c.DedeUserID = ck.Value
		case cookieUserCheck:
			c.DedeUserIDCkMD5 = ck.Value
		}
	}
	if c.SESSDATA == "" || c.BiliJCT == "" || c.DedeUserID == "" {
		return Credentials{}, false
	}
	c.RefreshToken = refreshToken
	return c, true
}

// Cookies returns the credential as request cookies for the API client.
func (c Credentials) Cookies() []*http.Cookie {
	out := []*http.Cookie{
		{Name: cookieSession, Value: c.SESSDATA},
		{Name: cookieCSRF, Value: c.BiliJCT},
		{Name: cookieUserID, Value: c.DedeUserID},
	}
	if c.DedeUserIDCkMD5 != "" {
		out = append(out, &http.Cookie{Name: cookieUserCheck, Value: c.DedeUserIDCkMD5})
	}
	return out
}
