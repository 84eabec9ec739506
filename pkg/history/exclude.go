package history

import (
	"fmt"

	"github.com/gobwas/glob"
)

// DefaultExcludePatterns keeps the built-in search engine out of history.
var DefaultExcludePatterns = []string{"*thazhsearch.wuaze.com*"}

// Matcher decides which URLs are never recorded.
type Matcher struct {
	patterns []glob.Glob
}

// NewMatcher compiles the given glob patterns.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
		m.patterns = append(m.patterns, g)
	}
	return m, nil
}

// Excluded reports whether url matches any pattern.
func (m *Matcher) Excluded(url string) bool {
	if m == nil {
		return false
	}
	for _, pattern := range m.patterns {
		if pattern.Match(url) {
			return true
		}
	}
	return false
}
