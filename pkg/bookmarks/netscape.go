package bookmarks

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// parseNetscape extracts every <A HREF> of a Netscape bookmark file.
// Folder structure (<H3>/<DL>) is flattened.
func parseNetscape(r io.Reader) ([]Bookmark, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var out []Bookmark
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "a") {
			if b, ok := anchorBookmark(n); ok {
				out = append(out, b)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, nil
}

func anchorBookmark(n *html.Node) (Bookmark, bool) {
	var b Bookmark
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "href":
			b.URL = strings.TrimSpace(attr.Val)
		case "add_date":
			b.DateAdded = addDateMillis(attr.Val)
		case "icon_uri":
			b.Favicon = attr.Val
		}
	}
	if b.URL == "" {
		return Bookmark{}, false
	}
	if strings.HasPrefix(strings.ToLower(b.URL), "place:") {
		// Firefox smart folders are queries, not pages
		return Bookmark{}, false
	}

	b.Title = strings.TrimSpace(textContent(n))
	return b, true
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
