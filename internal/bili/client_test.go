package bili

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bilitui/internal/wbi"
)

const (
	testImgKey = "7cd084941338484aae1ad9425b84077c"
	testSubKey = "4932caff0ff746eab6f01bf08b70ac45"
)

func navHandler(w http.ResponseWriter, code int) {
	fmt.Fprintf(w, `{"code":%d,"message":"","data":{"wbi_img":{
		"img_url":"https://i0.hdslb.com/bfs/wbi/%s.png",
		"sub_url":"https://i0.hdslb.com/bfs/wbi/%s.png"}}}`,
		code, testImgKey, testSubKey)
}

func TestClient_SignedGetAppendsValidSignature(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	var gotRawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/x/web-interface/nav":
			navHandler(w, 0)
		case "/x/web-interface/wbi/index/top/feed/rcmd":
			gotQuery = r.URL.Query()
			gotRawQuery = r.URL.RawQuery
			fmt.Fprint(w, `{"code":0,"message":"","data":{"item":[{"id":1,"bvid":"BV1xx","title":"t"}]}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newClient(server.URL, server.URL)
	items, err := client.Recommend(context.Background(), 12)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(items) != 1 || items[0].Bvid != "BV1xx" {
		t.Fatalf("items = %+v", items)
	}

	for _, key := range []string{"ps", "wts", "w_rid"} {
		if gotQuery.Get(key) == "" {
			t.Fatalf("signed query missing %s: %q", key, gotRawQuery)
		}
	}

	// Recompute the signature from the received parameters; it must match
	// what the client sent.
	ts := gotQuery.Get("wts")
	var wantTS int64
	fmt.Sscanf(ts, "%d", &wantTS)
	want := wbi.Sign(map[string]string{"ps": gotQuery.Get("ps")}, testImgKey, testSubKey, wantTS)
	if !strings.HasSuffix(want, "&w_rid="+gotQuery.Get("w_rid")) {
		t.Fatalf("signature mismatch: sent %q, recomputed %q", gotRawQuery, want)
	}
}

func TestClient_WbiKeysCachedAcrossCalls(t *testing.T) {
	t.Parallel()

	navCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/x/web-interface/nav":
			navCalls++
			navHandler(w, -101) // logged-out nav still carries the keys
		default:
			fmt.Fprint(w, `{"code":0,"message":"","data":{"item":[]}}`)
		}
	}))
	defer server.Close()

	client := newClient(server.URL, server.URL)
	for i := 0; i < 3; i++ {
		if _, err := client.Recommend(context.Background(), 1); err != nil {
			t.Fatalf("Recommend #%d: %v", i, err)
		}
	}
	if navCalls != 1 {
		t.Fatalf("nav fetched %d times, want 1", navCalls)
	}
}

func TestClient_NonZeroEnvelopeCodeIsAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":-412,"message":"request blocked"}`)
	}))
	defer server.Close()

	client := newClient(server.URL, server.URL)
	_, err := client.VideoInfo(context.Background(), "BV1xx")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Code != -412 || apiErr.Message != "request blocked" {
		t.Fatalf("APIError = %+v", apiErr)
	}
}

func TestClient_MalformedBodyIsDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,`)
	}))
	defer server.Close()

	client := newClient(server.URL, server.URL)
	_, err := client.VideoInfo(context.Background(), "BV1xx")
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("err = %v, want decode error", err)
	}
}

func TestClient_HTTPErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newClient(server.URL, server.URL)
	_, err := client.VideoInfo(context.Background(), "BV1xx")
	if err == nil || !strings.Contains(err.Error(), "status 502") {
		t.Fatalf("err = %v, want status 502 error", err)
	}
}

func TestClient_SetCredentialsAttachesAndDetachesCookies(t *testing.T) {
	t.Parallel()

	var gotCookies []*http.Cookie
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookies = r.Cookies()
		fmt.Fprint(w, `{"code":0,"message":"","data":{"cursor":{"max":0,"view_at":0,"business":""},"list":[]}}`)
	}))
	defer server.Close()

	client := newClient(server.URL, server.URL)
	client.SetCredentials(testCredentials())

	if _, err := client.History(context.Background(), nil); err != nil {
		t.Fatalf("History: %v", err)
	}
	byName := map[string]string{}
	for _, ck := range gotCookies {
		byName[ck.Name] = ck.Value
	}
	if byName["SESSDATA"] != "sess" || byName["bili_jct"] != "csrf" || byName["DedeUserID"] != "42" {
		t.Fatalf("cookies = %v", byName)
	}

	client.SetCredentials(zeroCredentials())
	gotCookies = nil
	if _, err := client.History(context.Background(), nil); err != nil {
		t.Fatalf("History after logout: %v", err)
	}
	if len(gotCookies) != 0 {
		t.Fatalf("cookies still attached after logout: %v", gotCookies)
	}
}
