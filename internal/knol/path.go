// Package knol holds the pure helpers for materialized paths and content fingerprints.
package knol

import "strings"

// Separator joins path segments.
const Separator = "/"

// TrimPath removes surrounding whitespace and leading/trailing separators.
func TrimPath(p string) string {
	return strings.Trim(strings.TrimSpace(p), Separator)
}

// Basename returns the last segment of p, or p itself when it has no separator.
func Basename(p string) string {
	if i := strings.LastIndex(p, Separator); i >= 0 {
		return p[i+1:]
	}
	return p
}

// ParentPath returns everything before the last separator, or "" at the top level.
func ParentPath(p string) string {
	if i := strings.LastIndex(p, Separator); i >= 0 {
		return p[:i]
	}
	return ""
}

// Join places name under parent. An empty parent is the root.
func Join(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + Separator + name
}

// WithRenamedBasename replaces only the last segment of p.
func WithRenamedBasename(p, newName string) string {
	return Join(ParentPath(p), newName)
}

// Ancestors lists the proper ancestors of p from the top down.
// Ancestors("a/b/c") is ["a", "a/b"].
func Ancestors(p string) []string {
	var out []string
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			out = append(out, p[:i])
		}
	}
	return out
}

// IsWithin reports whether p equals root or lies underneath it.
func IsWithin(p, root string) bool {
	return p == root || strings.HasPrefix(p, root+Separator)
}

// Rebase swaps the oldRoot prefix of p for newRoot, keeping the suffix byte for byte.
// p must satisfy IsWithin(p, oldRoot).
func Rebase(p, oldRoot, newRoot string) string {
	return newRoot + p[len(oldRoot):]
}
