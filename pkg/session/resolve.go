package session

import (
	"net/url"
	"strings"
	"unicode"
)

// Defaults for the built-in search engine, which is also the homepage.
const (
	DefaultSearchEngine = "http://thazhsearch.wuaze.com"
	DefaultHomepage     = DefaultSearchEngine

	// DesktopUserAgent is sent by every tab while desktop mode is on.
	DesktopUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// opaqueSchemes are accepted as-is even without "//".
var opaqueSchemes = []string{"about:", "data:", "file:", "javascript:", "mailto:", "view-source:"}

// Resolve turns address-bar input into a destination URL.
//
// Input that contains whitespace, or has neither a dot nor a colon, is a
// search query for searchEngine. Input that declares a scheme is returned
// unchanged. Anything else gets an https:// prefix. Blank input resolves
// to searchEngine itself.
func Resolve(input, searchEngine string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return searchEngine
	}

	if strings.ContainsFunc(input, unicode.IsSpace) ||
		(!strings.Contains(input, ".") && !strings.Contains(input, ":")) {
		return SearchURL(searchEngine, input)
	}

	if hasScheme(input) {
		return input
	}
	return "https://" + input
}

// SearchURL builds the query URL for terms on searchEngine.
func SearchURL(searchEngine, terms string) string {
	sep := "?"
	if strings.Contains(searchEngine, "?") {
		sep = "&"
	}
	return searchEngine + sep + "q=" + encodeComponent(terms)
}

// componentUnescaper undoes the QueryEscape encodings that
// encodeURIComponent leaves alone, and writes spaces as %20.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent percent-encodes s for a query value the way browsers'
// encodeURIComponent does.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// hasScheme reports whether s starts with "scheme://" or a known opaque scheme.
func hasScheme(s string) bool {
	lower := strings.ToLower(s)
	for _, prefix := range opaqueSchemes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}

	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for j, r := range s[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
