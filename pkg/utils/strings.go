package utils

import (
	"strings"
	"unicode"

	"github.com/Masterminds/goutils"
)

// Slugify lowercases s and collapses every non-alphanumeric run into a
// single dash.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) && r < unicode.MaxASCII || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// RandomToken returns a short random alphanumeric string, used for
// slug suffixes and dispatch invocation tokens.
func RandomToken(length int) string {
	token, err := goutils.CryptoRandomAlphaNumeric(length)
	if err != nil {
		// CryptoRandomAlphaNumeric only fails on a broken entropy
		// source; fall back to the non-crypto variant.
		token, _ = goutils.RandomAlphaNumeric(length)
	}
	return strings.ToLower(token)
}

func StringSliceContains(slice []string, target string) bool {
	for _, v := range slice {
		if v == target {
			return true
		}
	}
	return false
}
