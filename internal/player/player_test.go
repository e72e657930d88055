package player

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bilitui/internal/credential"
)

func TestBuildArgs(t *testing.T) {
	args := buildArgs("BV1xx", "")
	if args[0] != "--force-window=immediate" {
		t.Fatalf("args = %v", args)
	}
	if args[len(args)-1] != "https://www.bilibili.com/video/BV1xx" {
		t.Fatalf("video URL wrong: %v", args)
	}

	args = buildArgs("BV1xx", "/tmp/cookies.txt")
	found := false
	for _, a := range args {
		if a == "--ytdl-raw-options=cookies=/tmp/cookies.txt" {
			found = true
		}
	}
	if !found {
		t.Fatalf("cookie option missing: %v", args)
	}
}

func TestPlay_RemovesCookieJarOnExit(t *testing.T) {
	dir := t.TempDir()
	jar, err := credential.NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	creds := credential.Credentials{SESSDATA: "s", BiliJCT: "c", DedeUserID: "1"}

	// "true" stands in for mpv: exits immediately with success.
	l := New("true", jar, nil)
	if err := l.Play(context.Background(), "BV1xx", &creds); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "cookies.txt")); !os.IsNotExist(err) {
		t.Fatal("cookie jar survived a clean exit")
	}
}

func TestPlay_RemovesCookieJarOnSpawnFailure(t *testing.T) {
	dir := t.TempDir()
	jar, err := credential.NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	creds := credential.Credentials{SESSDATA: "s", BiliJCT: "c", DedeUserID: "1"}

	l := New(filepath.Join(dir, "no-such-binary"), jar, nil)
	err = l.Play(context.Background(), "BV1xx", &creds)
	if err == nil || !strings.Contains(err.Error(), "run") {
		t.Fatalf("Play = %v, want spawn failure", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "cookies.txt")); !os.IsNotExist(statErr) {
		t.Fatal("cookie jar survived a spawn failure")
	}
}

func TestPlay_AnonymousNeedsNoJar(t *testing.T) {
	l := New("true", nil, nil)
	if err := l.Play(context.Background(), "BV1xx", nil); err != nil {
		t.Fatalf("Play: %v", err)
	}
}
