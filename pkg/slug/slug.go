// Package slug generates URL-safe identifiers from display names.
package slug

import (
	"crypto/rand"
	"strings"
)

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Make converts a display name into a lowercase URL-safe slug: ASCII
// letters and digits pass through, everything else collapses into a
// single dash. The result never has leading or trailing dashes.
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// MakeUnique builds a slug from the name and appends a random
// alphanumeric suffix of the given length to avoid collisions.
// An empty or fully-stripped name yields just the suffix.
func MakeUnique(s string, suffixLen int) string {
	base := Make(s)
	if suffixLen <= 0 {
		return base
	}
	suffix := randomSuffix(suffixLen)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic("slug: crypto/rand unavailable: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(buf)
}
