package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Raw keys have the form gv_{tenant}_{32 lowercase hex chars}. The random
// segment is hex-encoded, which by construction can contain neither "_" (the
// field delimiter) nor "/" (the parameter store path delimiter).
const (
	keyFieldSep   = "_"
	randomBytes   = 16
	randomHexLen  = 2 * randomBytes
	prefixHexLen  = 8
	keyFieldCount = 3
)

var rawKeyPattern = regexp.MustCompile(`^gv_[^_]+_[0-9a-f]{32}$`)

// ErrMalformedKey is returned when a raw key does not match the expected
// format. It is rejected before any store access.
var ErrMalformedKey = errors.New("apikey: malformed key")

// newRawKey generates a fresh secret for the tenant and returns it together
// with its stored prefix.
func newRawKey(tenantID string) (raw, prefix string, err error) {
	buf := make([]byte, randomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("apikey: generate random: %w", err)
	}
	random := hex.EncodeToString(buf)
	raw = "gv" + keyFieldSep + tenantID + keyFieldSep + random
	return raw, StoredPrefix(raw), nil
}

// StoredPrefix derives the public, loggable prefix from a raw key: the first
// three underscore-delimited fields with the random field cut to 8 hex chars.
// The input is assumed well-formed; use ParseRawKey to validate first.
func StoredPrefix(raw string) string {
	fields := strings.SplitN(raw, keyFieldSep, keyFieldCount)
	if len(fields) < keyFieldCount {
		return raw
	}
	random := fields[2]
	if len(random) > prefixHexLen {
		random = random[:prefixHexLen]
	}
	return fields[0] + keyFieldSep + fields[1] + keyFieldSep + random
}

// ParseRawKey validates the key format and returns its tenant and random
// segments.
func ParseRawKey(raw string) (tenantID, random string, err error) {
	if !rawKeyPattern.MatchString(raw) {
		return "", "", ErrMalformedKey
	}
	fields := strings.SplitN(raw, keyFieldSep, keyFieldCount)
	return fields[1], fields[2], nil
}
