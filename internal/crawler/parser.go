package crawler

import (
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// hyperlinkElements are the elements whose href attribute is followed.
var hyperlinkElements = map[string]bool{
	"a":    true,
	"link": true,
}

// ExtractHyperlinkTargets returns the raw href values of <a> and <link>
// elements in document order. Values are neither trimmed nor resolved.
//
// The document is decoded to UTF-8 first, using the charset from
// contentType, a <meta> declaration or content sniffing, in that order.
// Malformed HTML is tolerated the way browsers tolerate it.
func ExtractHyperlinkTargets(r io.Reader, contentType string) ([]string, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(utf8Reader)
	if err != nil {
		return nil, err
	}

	targets := make([]string, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hyperlinkElements[n.Data] {
			if href, ok := getAttr(n, "href"); ok {
				targets = append(targets, href)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return targets, nil
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
