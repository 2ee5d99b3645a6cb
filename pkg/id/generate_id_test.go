package id

import (
	"encoding/base64"
	"regexp"
	"testing"
)

var reToken = regexp.MustCompile(`^[A-Za-z0-9_-]{43}$`)

func TestNewToken_FormatAndDecode(t *testing.T) {
	got, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if len(got) != TokenLen {
		t.Fatalf("length = %d, want %d (got=%q)", len(got), TokenLen, got)
	}
	// url-safe alphabet, no padding, usable in an Authorization header as is
	if !reToken.MatchString(got) {
		t.Fatalf("not url-safe base64: %q", got)
	}
	b, err := base64.RawURLEncoding.DecodeString(got)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(b) != 32 {
		t.Fatalf("decoded bytes = %d, want 32", len(b))
	}
}

func TestNewToken_Uniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		tok, err := NewToken()
		if err != nil {
			t.Fatalf("NewToken: %v", err)
		}
		if _, ok := seen[tok]; ok {
			t.Fatalf("duplicate token after %d iterations: %q", i, tok)
		}
		seen[tok] = struct{}{}
	}
}
