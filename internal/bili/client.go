package bili

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"bilitui/internal/credential"
	"bilitui/internal/wbi"
)

const (
	apiBase      = "https://api.bilibili.com"
	passportBase = "https://passport.bilibili.com"

	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	defaultReferer   = "https://www.bilibili.com"
	requestTimeout   = 10 * time.Second

	// The wbi key fragments rotate server-side roughly daily; refetch
	// well within that window and re-derive the mixin key on demand.
	wbiKeyTTL = 12 * time.Hour
)

// Client talks to the Bilibili web API. It attaches session cookies when
// credentials are set and signs wbi endpoints transparently.
type Client struct {
	rest         *resty.Client
	apiBase      string
	passportBase string

	mu          sync.Mutex
	imgKey      string
	subKey      string
	keysFetched time.Time
}

// New builds a Client against the production hosts.
func New() *Client {
	return newClient(apiBase, passportBase)
}

func newClient(api, passport string) *Client {
	rest := resty.New().
		SetTimeout(requestTimeout).
		SetHeader("User-Agent", defaultUserAgent).
		SetHeader("Referer", defaultReferer).
		SetHeader("Accept", "application/json")
	return &Client{
		rest:         rest,
		apiBase:      api,
		passportBase: passport,
	}
}

// SetCredentials attaches (or, with the zero value, detaches) the session
// cookies sent with every subsequent request.
func (c *Client) SetCredentials(creds credential.Credentials) {
	if creds.SESSDATA == "" {
		c.rest.Cookies = nil
		return
	}
	c.rest.Cookies = creds.Cookies()
}

// APIError is a structurally valid response whose envelope code is
// non-zero. The platform's codes are opaque; keep them for diagnostics.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

// envelope is the common {code, message, data} wrapper on every endpoint.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, base, path, rawQuery string, dest any) error {
	reqURL := base + path
	if rawQuery != "" {
		reqURL += "?" + rawQuery
	}
	resp, err := c.rest.R().SetContext(ctx).Get(reqURL)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return fmt.Errorf("api %s returned status %d", path, resp.StatusCode())
	}
	env, err := decodeEnvelope(resp.Body(), path)
	if err != nil {
		return err
	}
	if env.Code != 0 {
		return &APIError{Code: env.Code, Message: env.Message}
	}
	return decodeData(env, path, dest)
}

func decodeEnvelope(body []byte, path string) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response %s: %w", path, err)
	}
	return &env, nil
}

func decodeData(env *envelope, path string, dest any) error {
	if dest == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("api %s returned no data", path)
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode data %s: %w", path, err)
	}
	return nil
}

// signedGet issues a wbi-signed GET against the main API host.
func (c *Client) signedGet(ctx context.Context, path string, params map[string]string, dest any) error {
	imgKey, subKey, err := c.wbiKeys(ctx)
	if err != nil {
		return err
	}
	query := wbi.Sign(params, imgKey, subKey, time.Now().Unix())
	return c.get(ctx, c.apiBase, path, query, dest)
}

type navData struct {
	WbiImg struct {
		ImgURL string `json:"img_url"`
		SubURL string `json:"sub_url"`
	} `json:"wbi_img"`
}

// wbiKeys returns the cached key pair, refetching from the nav endpoint
// when the cache is cold or stale.
func (c *Client) wbiKeys(ctx context.Context) (string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.imgKey != "" && time.Since(c.keysFetched) < wbiKeyTTL {
		return c.imgKey, c.subKey, nil
	}

	resp, err := c.rest.R().SetContext(ctx).Get(c.apiBase + "/x/web-interface/nav")
	if err != nil {
		return "", "", fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return "", "", fmt.Errorf("api /x/web-interface/nav returned status %d", resp.StatusCode())
	}
	env, err := decodeEnvelope(resp.Body(), "/x/web-interface/nav")
	if err != nil {
		return "", "", err
	}
	// Code -101 is "not logged in"; the wbi keys are present regardless,
	// since anonymous signed requests are valid.
	if env.Code != 0 && env.Code != -101 {
		return "", "", &APIError{Code: env.Code, Message: env.Message}
	}
	var nav navData
	if err := decodeData(env, "/x/web-interface/nav", &nav); err != nil {
		return "", "", err
	}

	imgKey := wbi.ExtractKeyFromURL(nav.WbiImg.ImgURL)
	subKey := wbi.ExtractKeyFromURL(nav.WbiImg.SubURL)
	if imgKey == "" || subKey == "" {
		return "", "", fmt.Errorf("nav response missing wbi keys")
	}

	c.imgKey = imgKey
	c.subKey = subKey
	c.keysFetched = time.Now()
	return c.imgKey, c.subKey, nil
}

// Recommend fetches the home feed recommendations.
func (c *Client) Recommend(ctx context.Context, count int) ([]VideoItem, error) {
	if count <= 0 {
		count = 12
	}
	var data RecommendData
	err := c.signedGet(ctx, "/x/web-interface/wbi/index/top/feed/rcmd", map[string]string{
		"ps": fmt.Sprintf("%d", count),
	}, &data)
	if err != nil {
		return nil, err
	}
	return data.Items, nil
}

// SearchVideos runs a typed video search for the keyword.
func (c *Client) SearchVideos(ctx context.Context, keyword string, page int) (*SearchData, error) {
	if page <= 0 {
		page = 1
	}
	var data SearchData
	err := c.signedGet(ctx, "/x/web-interface/wbi/search/type", map[string]string{
		"search_type": "video",
		"keyword":     keyword,
		"page":        fmt.Sprintf("%d", page),
	}, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// History fetches a page of watch history. A nil cursor starts from the
// most recent entry; pass the cursor from the previous page to continue.
func (c *Client) History(ctx context.Context, cursor *HistoryCursor) (*HistoryData, error) {
	values := url.Values{}
	if cursor != nil {
		values.Set("max", fmt.Sprintf("%d", cursor.Max))
		values.Set("view_at", fmt.Sprintf("%d", cursor.ViewAt))
		values.Set("business", cursor.Business)
	}
	var data HistoryData
	if err := c.get(ctx, c.apiBase, "/x/web-interface/history/cursor", values.Encode(), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DynamicFeed fetches the followed-uploaders video feed. An empty offset
// starts from the top.
func (c *Client) DynamicFeed(ctx context.Context, offset string) (*DynamicFeedData, error) {
	values := url.Values{}
	values.Set("type", "video")
	if offset != "" {
		values.Set("offset", offset)
	}
	var data DynamicFeedData
	if err := c.get(ctx, c.apiBase, "/x/polymer/web-dynamic/v1/feed/all", values.Encode(), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// VideoInfo fetches view data for a single video.
func (c *Client) VideoInfo(ctx context.Context, bvid string) (*VideoInfo, error) {
	values := url.Values{}
	values.Set("bvid", bvid)
	var data VideoInfo
	if err := c.get(ctx, c.apiBase, "/x/web-interface/view", values.Encode(), &data); err != nil {
		return nil, err
	}
	return &data, nil
}
