package uniuri

import (
	"crypto/rand"
	"crypto/subtle"
)

// StdLen gives ~190 bits of entropy with StdChars.
const StdLen = 32

// StdChars are the characters of a token. They are safe in URLs, form values and cookies.
const StdChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// New returns a token of StdLen characters.
func New() string {
	return NewLen(StdLen)
}

// NewLen returns a token of n characters from StdChars.
// Random bytes at or above the largest multiple of len(StdChars) are rejected to keep the distribution uniform.
func NewLen(n int) string {
	if n <= 0 {
		return ""
	}

	limit := byte(256 - 256%len(StdChars))
	out := make([]byte, 0, n)
	buf := make([]byte, n+n/4+1)

	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			panic("uniuri: random source failed: " + err.Error())
		}

		for _, b := range buf {
			if b >= limit {
				continue
			}

			out = append(out, StdChars[int(b)%len(StdChars)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out)
}

// Equal compares two tokens in constant time. Empty tokens never match.
func Equal(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
