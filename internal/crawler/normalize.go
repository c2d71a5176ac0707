package crawler

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/urlextract/internal/model"
)

// nonNavigablePrefixes are href prefixes that never lead to a page.
var nonNavigablePrefixes = []string{"javascript:", "mailto:", "tel:", "#"}

// Normalize reduces an absolute URL to scheme://host/path without query,
// fragment or trailing slash. Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) (model.CanonicalURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, raw)
	}
	return canonical(u, hasNonASCII(raw)), nil
}

// canonical builds the canonical form of u. With keepUnicode set, non-ASCII
// path characters stay as written instead of being percent-encoded.
func canonical(u *url.URL, keepUnicode bool) model.CanonicalURL {
	path := u.EscapedPath()
	if keepUnicode {
		path = unescapeNonASCII(path)
	}
	s := u.Scheme + "://" + u.Host + path
	return model.CanonicalURL(strings.TrimRight(s, "/"))
}

func hasNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return true
		}
	}
	return false
}

// unescapeNonASCII decodes the %XX sequences of path that encode bytes
// above 0x7F. ASCII escapes such as %20 are left alone. path is returned
// unchanged when the decoded form is not valid UTF-8.
func unescapeNonASCII(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	for i := 0; i < len(path); i++ {
		if path[i] == '%' && i+2 < len(path) {
			hi, okHi := unhex(path[i+1])
			lo, okLo := unhex(path[i+2])
			if okHi && okLo && (hi<<4|lo) >= utf8.RuneSelf {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		b.WriteByte(path[i])
	}
	if !utf8.ValidString(b.String()) {
		return path
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// ResolveLink resolves one raw href found on page and normalizes it.
// It reports false for empty and non-navigable targets, unparsable
// targets, and targets whose host differs from originHost.
func ResolveLink(page *url.URL, href, originHost string) (model.CanonicalURL, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	for _, prefix := range nonNavigablePrefixes {
		if strings.HasPrefix(href, prefix) {
			return "", false
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := page.ResolveReference(ref)
	if resolved.Host != originHost {
		return "", false
	}
	return canonical(resolved, hasNonASCII(href) || hasNonASCII(page.RawPath)), true
}

// ExtractLinks returns the distinct same-origin canonical URLs linked from a
// page, in first-seen order. pageURL is the URL the body was fetched from and
// originHost the host of the crawl's base URL, port included.
func ExtractLinks(pageURL model.CanonicalURL, body []byte, contentType, originHost string) ([]model.CanonicalURL, error) {
	page, err := url.Parse(pageURL.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	targets, err := ExtractHyperlinkTargets(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}

	seen := model.NewURLSet()
	links := make([]model.CanonicalURL, 0, len(targets))
	for _, href := range targets {
		link, ok := ResolveLink(page, href, originHost)
		if !ok || seen.Has(link) {
			continue
		}
		seen.Add(link)
		links = append(links, link)
	}
	return links, nil
}
