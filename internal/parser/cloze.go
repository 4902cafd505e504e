package parser

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

const (
	clozeTag   = "cloze"
	clozeIndex = "index"
)

// ClozeIndices returns the distinct numeric indices of <cloze index="N"> markers in content,
// sorted ascending and formatted as decimal strings. Markers without a numeric index are skipped.
func ClozeIndices(content string) []string {
	seen := make(map[int]struct{})
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != clozeTag || !hasAttr {
			continue
		}
		for {
			key, val, more := z.TagAttr()
			if string(key) == clozeIndex {
				if n, err := strconv.Atoi(strings.TrimSpace(string(val))); err == nil && n >= 0 {
					seen[n] = struct{}{}
				}
			}
			if !more {
				break
			}
		}
	}

	indices := make([]int, 0, len(seen))
	for n := range seen {
		indices = append(indices, n)
	}
	slices.Sort(indices)

	out := make([]string, len(indices))
	for i, n := range indices {
		out[i] = strconv.Itoa(n)
	}
	return out
}
