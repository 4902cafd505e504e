package knol

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Normalize trims the content and normalizes line endings so that cosmetic edits to a
// source file do not change its fingerprint.
func Normalize(content string) string {
	c := strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(c, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Hash returns the SHA-256 hex digest of the normalized content.
func Hash(content string) string {
	sum := sha256.Sum256([]byte(Normalize(content)))
	return fmt.Sprintf("%x", sum)
}
