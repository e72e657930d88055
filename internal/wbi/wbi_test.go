package wbi

import (
	"strings"
	"testing"
)

const (
	testImgKey = "7cd084941338484aae1ad9425b84077c"
	testSubKey = "4932caff0ff746eab6f01bf08b70ac45"
)

func TestDeriveMixinKey(t *testing.T) {
	got := DeriveMixinKey(testImgKey, testSubKey)
	want := "ea1db124af3c7062474693fa704f4ff8"
	if got != want {
		t.Fatalf("DeriveMixinKey = %q, want %q", got, want)
	}
	if len(got) != 32 {
		t.Fatalf("mixin key length = %d, want 32", len(got))
	}
	if again := DeriveMixinKey(testImgKey, testSubKey); again != got {
		t.Fatalf("DeriveMixinKey not deterministic: %q vs %q", again, got)
	}
}

func TestSign_KnownVector(t *testing.T) {
	params := map[string]string{
		"foo": "114",
		"bar": "514",
		"zab": "1919810",
	}
	got := Sign(params, testImgKey, testSubKey, 1702204169)
	want := "bar=514&foo=114&wts=1702204169&zab=1919810&w_rid=8f6f2b5b3d485fe1886cec6a0be8c5d4"
	if got != want {
		t.Fatalf("Sign = %q, want %q", got, want)
	}
}

func TestSign_EmptyParams(t *testing.T) {
	got := Sign(nil, testImgKey, testSubKey, 1702204169)
	if !strings.HasPrefix(got, "wts=1702204169&w_rid=") {
		t.Fatalf("Sign(nil) = %q, want wts plus w_rid only", got)
	}
}

func TestSign_DoesNotMutateInput(t *testing.T) {
	params := map[string]string{"foo": "1"}
	_ = Sign(params, testImgKey, testSubKey, 1)
	if len(params) != 1 {
		t.Fatalf("input params mutated: %v", params)
	}
}

func TestSign_SpecialCharacters(t *testing.T) {
	// The WBI encoding drops !'()* and escapes the rest per UTF-8 byte
	// with uppercase hex. Reserved characters in values get no special
	// treatment.
	params := map[string]string{"q": "a b&c='(x)*!", "中": "文"}
	got := Sign(params, testImgKey, testSubKey, 1)

	if strings.Contains(got, "!") || strings.Contains(got, "'") || strings.Contains(got, "(") {
		t.Fatalf("filtered characters leaked into %q", got)
	}
	if !strings.Contains(got, "q=a%20b%26c%3D") {
		t.Fatalf("reserved characters not escaped: %q", got)
	}
	if !strings.Contains(got, "%E4%B8%AD=%E6%96%87") {
		t.Fatalf("non-ASCII not escaped per UTF-8 byte: %q", got)
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abcXYZ019-_.~", "abcXYZ019-_.~"},
		{"!'()*", ""},
		{"a b", "a%20b"},
		{"k=v&k2", "k%3Dv%26k2"},
		{"中", "%E4%B8%AD"},
	}
	for _, tt := range tests {
		if got := encode(tt.in); got != tt.want {
			t.Errorf("encode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractKeyFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://i0.hdslb.com/bfs/wbi/7cd084941338484aae1ad9425b84077c.png", "7cd084941338484aae1ad9425b84077c"},
		{"https://example.com/a/b/key.jpeg", "key"},
		{"no-slashes-here", ""},
		{"https://example.com/noext", ""},
	}
	for _, tt := range tests {
		if got := ExtractKeyFromURL(tt.url); got != tt.want {
			t.Errorf("ExtractKeyFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
