package apikey

import (
	"strings"
	"testing"
)

func TestNewRawKey_Format(t *testing.T) {
	for i := 0; i < 1000; i++ {
		raw, prefix, err := newRawKey("acme")
		if err != nil {
			t.Fatalf("newRawKey: %v", err)
		}
		if !rawKeyPattern.MatchString(raw) {
			t.Fatalf("raw key %q does not match expected format", raw)
		}
		if !strings.HasPrefix(raw, "gv_acme_") {
			t.Fatalf("raw key %q missing gv_acme_ prefix", raw)
		}
		if len(raw) != len("gv_acme_")+randomHexLen {
			t.Fatalf("raw key %q has wrong length %d", raw, len(raw))
		}
		if prefix != StoredPrefix(raw) {
			t.Fatalf("prefix %q != StoredPrefix(%q) = %q", prefix, raw, StoredPrefix(raw))
		}
	}
}

func TestNewRawKey_RandomSegmentHasNoDelimiters(t *testing.T) {
	for i := 0; i < 1000; i++ {
		raw, _, err := newRawKey("acme")
		if err != nil {
			t.Fatalf("newRawKey: %v", err)
		}
		// Exactly two delimiters: gv_{tenant}_{random}.
		if strings.Count(raw, "_") != 2 {
			t.Fatalf("raw key %q has %d underscores, want 2", raw, strings.Count(raw, "_"))
		}
		if strings.Contains(raw, "/") {
			t.Fatalf("raw key %q contains a slash", raw)
		}
	}
}

func TestStoredPrefix(t *testing.T) {
	raw := "gv_acme_0123456789abcdef0123456789abcdef"
	want := "gv_acme_01234567"
	if got := StoredPrefix(raw); got != want {
		t.Errorf("StoredPrefix(%q) = %q, want %q", raw, got, want)
	}
}

func TestParseRawKey(t *testing.T) {
	tenant, random, err := ParseRawKey("gv_acme_0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("ParseRawKey: %v", err)
	}
	if tenant != "acme" {
		t.Errorf("tenant = %q, want acme", tenant)
	}
	if random != "0123456789abcdef0123456789abcdef" {
		t.Errorf("random = %q", random)
	}
}

func TestParseRawKey_Malformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"gv_acme",
		"gv_acme_tooshort",
		"gv_acme_0123456789ABCDEF0123456789ABCDEF", // uppercase hex
		"xx_acme_0123456789abcdef0123456789abcdef", // wrong product prefix
		"gv__0123456789abcdef0123456789abcdef",     // empty tenant
		"gv_ac_me_0123456789abcdef0123456789abcdef",
		"gv_acme_0123456789abcdef0123456789abcdef0", // 33 hex chars
	} {
		if _, _, err := ParseRawKey(raw); err != ErrMalformedKey {
			t.Errorf("ParseRawKey(%q) err = %v, want ErrMalformedKey", raw, err)
		}
	}
}
