package crawler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/urlextract/internal/fetch"
	"github.com/nao1215/urlextract/internal/model"
)

// fakeFetcher answers from fixed tables and records HEAD calls.
type fakeFetcher struct {
	mu    sync.Mutex
	heads map[string]*fetch.Response
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Head(_ context.Context, rawURL string) (*fetch.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rawURL)
	if err, ok := f.errs[rawURL]; ok {
		return nil, err
	}
	if resp, ok := f.heads[rawURL]; ok {
		return resp, nil
	}
	return nil, fmt.Errorf("%w: no such host", fetch.ErrFetchFailed)
}

func (f *fakeFetcher) Get(ctx context.Context, rawURL string) (*fetch.Response, error) {
	return f.Head(ctx, rawURL)
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		seed string
		want []string
	}{
		{
			name: "bare host gets https and www variant",
			seed: "example.org",
			want: []string{"https://example.org", "https://www.example.org"},
		},
		{
			name: "whitespace is trimmed",
			seed: "  enperu.org \n",
			want: []string{"https://enperu.org", "https://www.enperu.org"},
		},
		{
			name: "explicit http scheme is kept",
			seed: "http://example.org/path",
			want: []string{"http://example.org/path", "http://www.example.org/path"},
		},
		{
			name: "www seed has a single candidate",
			seed: "https://www.example.org",
			want: []string{"https://www.example.org"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Candidates(tt.seed)
			if err != nil {
				t.Fatalf("Candidates() error = %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Candidates() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("empty seed", func(t *testing.T) {
		t.Parallel()

		if _, err := Candidates("   "); !errors.Is(err, ErrEmptySeed) {
			t.Errorf("expected ErrEmptySeed, got %v", err)
		}
	})
}

func TestResolver(t *testing.T) {
	t.Parallel()

	t.Run("falls back to www variant", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{
			heads: map[string]*fetch.Response{
				"https://example.org":     {StatusCode: http.StatusForbidden, FinalURL: "https://example.org"},
				"https://www.example.org": {StatusCode: http.StatusOK, FinalURL: "https://www.example.org"},
			},
		}

		got, err := NewResolver(f).Resolve(context.Background(), "example.org")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != "https://www.example.org/" {
			t.Errorf("Resolve() = %q, want https://www.example.org/", got)
		}
	})

	t.Run("first success wins", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{
			heads: map[string]*fetch.Response{
				"https://example.org":     {StatusCode: http.StatusOK, FinalURL: "https://example.org/home//"},
				"https://www.example.org": {StatusCode: http.StatusOK, FinalURL: "https://www.example.org"},
			},
		}

		got, err := NewResolver(f).Resolve(context.Background(), "example.org")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != "https://example.org/home/" {
			t.Errorf("Resolve() = %q, want https://example.org/home/", got)
		}
		if len(f.calls) != 1 {
			t.Errorf("expected 1 probe, got %v", f.calls)
		}
	})

	t.Run("downgrades to http on TLS error", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{
			errs: map[string]error{
				"https://example.org": fmt.Errorf("%w: certificate expired", fetch.ErrTLS),
			},
			heads: map[string]*fetch.Response{
				"http://example.org": {StatusCode: http.StatusOK, FinalURL: "http://example.org"},
			},
		}

		got, err := NewResolver(f).Resolve(context.Background(), "example.org")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != "http://example.org/" {
			t.Errorf("Resolve() = %q, want http://example.org/", got)
		}
	})

	t.Run("does not downgrade on other failures", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{
			heads: map[string]*fetch.Response{
				"http://example.org": {StatusCode: http.StatusOK, FinalURL: "http://example.org"},
			},
		}

		_, err := NewResolver(f).Resolve(context.Background(), "example.org")
		if !errors.Is(err, ErrUnreachable) {
			t.Errorf("expected ErrUnreachable, got %v", err)
		}
		for _, call := range f.calls {
			if strings.HasPrefix(call, "http://") {
				t.Errorf("unexpected downgrade probe %q", call)
			}
		}
	})

	t.Run("empty seed", func(t *testing.T) {
		t.Parallel()

		_, err := NewResolver(&fakeFetcher{}).Resolve(context.Background(), "")
		if !errors.Is(err, ErrEmptySeed) {
			t.Errorf("expected ErrEmptySeed, got %v", err)
		}
	})

	t.Run("real server", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client, err := fetch.NewClient()
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}

		got, err := NewResolver(client).Resolve(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != model.CanonicalURL(srv.URL+"/") {
			t.Errorf("Resolve() = %q, want %q", got, srv.URL+"/")
		}
	})
}

func TestResolverPlainHTTPServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := fetch.NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	seed := strings.TrimPrefix(srv.URL, "http://")
	got, err := NewResolver(client).Resolve(context.Background(), seed)
	if err != nil {
		t.Fatalf("Resolve(%q) error = %v", seed, err)
	}
	if got != model.CanonicalURL(srv.URL+"/") {
		t.Errorf("Resolve() = %q, want %q", got, srv.URL+"/")
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want model.CanonicalURL
	}{
		{name: "strips query and fragment", raw: "https://enperu.org/lima/?page=2#top", want: "https://enperu.org/lima"},
		{name: "strips trailing slashes", raw: "https://enperu.org/lima//", want: "https://enperu.org/lima"},
		{name: "origin root", raw: "https://enperu.org/", want: "https://enperu.org"},
		{name: "keeps port", raw: "http://127.0.0.1:8080/a", want: "http://127.0.0.1:8080/a"},
		{name: "keeps case", raw: "https://enperu.org/Lima", want: "https://enperu.org/Lima"},
		{name: "keeps percent encoding", raw: "https://enperu.org/caf%C3%A9", want: "https://enperu.org/caf%C3%A9"},
		{name: "keeps non-ASCII path as written", raw: "https://enperu.org/año/", want: "https://enperu.org/año"},
		{name: "non-ASCII path keeps ASCII escapes", raw: "https://enperu.org/año%20nuevo", want: "https://enperu.org/año%20nuevo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tt.raw)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}

			again, err := Normalize(got.String())
			if err != nil {
				t.Fatalf("Normalize() second pass error = %v", err)
			}
			if again != got {
				t.Errorf("Normalize is not idempotent: %q -> %q", got, again)
			}
		})
	}

	t.Run("relative URL is rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := Normalize("/lima"); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})
}

func TestResolveLink(t *testing.T) {
	t.Parallel()

	page, err := url.Parse("https://enperu.org/lima")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		href   string
		want   model.CanonicalURL
		wantOK bool
	}{
		{name: "absolute path", href: "/lima/provincia-huaura", want: "https://enperu.org/lima/provincia-huaura", wantOK: true},
		{name: "relative path resolves against page", href: "provincia-huaura", want: "https://enperu.org/provincia-huaura", wantOK: true},
		{name: "surrounding whitespace", href: "  /contacto/ ", want: "https://enperu.org/contacto", wantOK: true},
		{name: "query dropped", href: "/buscar?q=lima", want: "https://enperu.org/buscar", wantOK: true},
		{name: "non-ASCII path as written", href: "/ancash/provincia-huaraz/año/", want: "https://enperu.org/ancash/provincia-huaraz/año", wantOK: true},
		{name: "percent-encoded path as written", href: "/caf%C3%A9", want: "https://enperu.org/caf%C3%A9", wantOK: true},
		{name: "empty", href: "   ", wantOK: false},
		{name: "javascript", href: "javascript:void(0)", wantOK: false},
		{name: "mailto", href: "mailto:info@enperu.org", wantOK: false},
		{name: "tel", href: "tel:+5112345678", wantOK: false},
		{name: "fragment", href: "#arriba", wantOK: false},
		{name: "other host", href: "https://example.com/lima", wantOK: false},
		{name: "www variant is another origin", href: "https://www.enperu.org/lima", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ResolveLink(page, tt.href, "enperu.org")
			if ok != tt.wantOK {
				t.Fatalf("ResolveLink() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ResolveLink() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractHyperlinkTargets(t *testing.T) {
	t.Parallel()

	t.Run("a and link in document order", func(t *testing.T) {
		t.Parallel()

		doc := `<html><head><link rel="stylesheet" href="/css/site.css"></head>
			<body><a href="/uno">1</a><a name="sin-href">x</a><img src="/logo.png"><a href=" /dos ">2</a></body></html>`

		got, err := ExtractHyperlinkTargets(strings.NewReader(doc), "text/html")
		if err != nil {
			t.Fatalf("ExtractHyperlinkTargets() error = %v", err)
		}
		want := []string{"/css/site.css", "/uno", " /dos "}
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("decodes declared charset", func(t *testing.T) {
		t.Parallel()

		doc := "<html><body><a href=\"/caf\xe9\">latin1</a></body></html>"

		got, err := ExtractHyperlinkTargets(strings.NewReader(doc), "text/html; charset=iso-8859-1")
		if err != nil {
			t.Fatalf("ExtractHyperlinkTargets() error = %v", err)
		}
		if len(got) != 1 || got[0] != "/café" {
			t.Errorf("got %q, want [/café]", got)
		}
	})

	t.Run("malformed html", func(t *testing.T) {
		t.Parallel()

		doc := `<div><a href="/a">unclosed<p><a href="/b">`

		got, err := ExtractHyperlinkTargets(strings.NewReader(doc), "")
		if err != nil {
			t.Fatalf("ExtractHyperlinkTargets() error = %v", err)
		}
		want := []string{"/a", "/a", "/b"}
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}

func TestExtractLinks(t *testing.T) {
	t.Parallel()

	body := []byte(`<html><body>
		<a href="/lima/">Lima</a>
		<a href="/lima#mapa">Lima again</a>
		<a href="javascript:void(0)">js</a>
		<a href="https://facebook.com/enperu">fb</a>
		<a href="/contacto">Contacto</a>
	</body></html>`)

	got, err := ExtractLinks("https://enperu.org", body, "text/html", "enperu.org")
	if err != nil {
		t.Fatalf("ExtractLinks() error = %v", err)
	}
	want := []model.CanonicalURL{"https://enperu.org/lima", "https://enperu.org/contacto"}
	if len(got) != len(want) {
		t.Fatalf("ExtractLinks() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ExtractLinks()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractLinksMalformedHTML(t *testing.T) {
	t.Parallel()

	// The parser reopens the unclosed anchor inside <p>, so "/a" is seen twice.
	body := []byte(`<div><a href="/a">unclosed<p><a href="/b">`)

	got, err := ExtractLinks("https://enperu.org", body, "", "enperu.org")
	if err != nil {
		t.Fatalf("ExtractLinks() error = %v", err)
	}
	want := []model.CanonicalURL{"https://enperu.org/a", "https://enperu.org/b"}
	if len(got) != len(want) {
		t.Fatalf("ExtractLinks() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ExtractLinks()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFrontier(t *testing.T) {
	t.Parallel()

	t.Run("pops every member exactly once", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier(nil)
		for i := range 50 {
			f.Add(model.CanonicalURL(fmt.Sprintf("https://enperu.org/p/%d", i)))
		}
		if f.Add("https://enperu.org/p/0") {
			t.Error("duplicate Add should report false")
		}

		seen := model.NewURLSet()
		for f.Len() > 0 {
			u, ok := f.Pop()
			if !ok {
				t.Fatal("Pop() reported empty with Len() > 0")
			}
			if seen.Has(u) {
				t.Fatalf("popped %q twice", u)
			}
			if f.Has(u) {
				t.Fatalf("%q still queued after Pop", u)
			}
			seen.Add(u)
		}
		if len(seen) != 50 {
			t.Errorf("popped %d URLs, want 50", len(seen))
		}
		if _, ok := f.Pop(); ok {
			t.Error("Pop() on empty frontier should report false")
		}
	})

	t.Run("same seed gives same order", func(t *testing.T) {
		t.Parallel()

		order := func() []model.CanonicalURL {
			f := NewFrontier(rand.New(rand.NewPCG(42, 0)))
			for i := range 20 {
				f.Add(model.CanonicalURL(fmt.Sprintf("https://enperu.org/p/%d", i)))
			}
			out := make([]model.CanonicalURL, 0, 20)
			for f.Len() > 0 {
				u, _ := f.Pop()
				out = append(out, u)
			}
			return out
		}

		a, b := order(), order()
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("orders differ at %d: %q vs %q", i, a[i], b[i])
			}
		}
	})
}

// testSite serves a small site and counts GET requests per path.
type testSite struct {
	srv  *httptest.Server
	mu   sync.Mutex
	gets map[string]int
}

func newTestSite(t *testing.T, pages map[string]string) *testSite {
	t.Helper()

	site := &testSite{gets: make(map[string]int)}
	site.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			site.mu.Lock()
			site.gets[r.URL.Path]++
			site.mu.Unlock()
		}
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(site.srv.Close)
	return site
}

func (s *testSite) base() model.CanonicalURL {
	return model.CanonicalURL(s.srv.URL + "/")
}

func (s *testSite) getCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets[path]
}

func newTestSpider(t *testing.T, opts ...SpiderOption) *Spider {
	t.Helper()

	client, err := fetch.NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	opts = append([]SpiderOption{WithDelay(0), WithSeed(1)}, opts...)
	return NewSpider(client, opts...)
}

func TestSpiderCrawl(t *testing.T) {
	t.Parallel()

	t.Run("collects same-origin pages", func(t *testing.T) {
		t.Parallel()

		site := newTestSite(t, map[string]string{
			"/": `<a href="/lima/">Lima</a>
				<a href="/lima/provincia-huaura">Huaura</a>
				<a href="/contacto">Contacto</a>
				<a href="/docs/report.pdf">PDF</a>
				<a href="/no-existe">404</a>
				<a href="javascript:void(0)">js</a>
				<a href="mailto:info@example.org">mail</a>
				<a href="http://other.example/x">external</a>`,
			"/lima":                  `<a href="/lima/provincia-huaura">Huaura</a><a href="/contacto">Contacto</a>`,
			"/lima/provincia-huaura": `<a href="/lima">Lima</a>`,
			"/contacto":              `<p>contacto</p>`,
			"/docs/report.pdf":       `%PDF-1.4`,
		})

		result, err := newTestSpider(t).Crawl(context.Background(), site.base(), 2)
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}

		base := site.srv.URL
		want := []model.CanonicalURL{
			model.CanonicalURL(base + "/"),
			model.CanonicalURL(base + "/contacto"),
			model.CanonicalURL(base + "/lima"),
			model.CanonicalURL(base + "/lima/provincia-huaura"),
		}
		if len(result.Found) != len(want) {
			t.Fatalf("Found = %v, want %v", result.Found, want)
		}
		for i := range want {
			if result.Found[i] != want[i] {
				t.Errorf("Found[%d] = %q, want %q", i, result.Found[i], want[i])
			}
		}

		if result.Stats.SkippedExtension != 1 {
			t.Errorf("SkippedExtension = %d, want 1", result.Stats.SkippedExtension)
		}
		if result.Stats.SkippedStatus != 1 {
			t.Errorf("SkippedStatus = %d, want 1", result.Stats.SkippedStatus)
		}
		if result.Stats.Visited != 6 || len(result.Visited) != 6 {
			t.Errorf("Visited = %d (%v), want 6", result.Stats.Visited, result.Visited)
		}
		if site.getCount("/docs/report.pdf") != 0 {
			t.Error("skipped extension must not be fetched with GET")
		}
	})

	t.Run("never fetches a URL twice", func(t *testing.T) {
		t.Parallel()

		site := newTestSite(t, map[string]string{
			"/":  `<a href="/a">a</a><a href="/b">b</a>`,
			"/a": `<a href="/b">b</a><a href="/a">a</a><a href="/a/">a</a>`,
			"/b": `<a href="/a#x">a</a><a href="/b?y=1">b</a>`,
		})

		result, err := newTestSpider(t).Crawl(context.Background(), site.base(), 1)
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}

		for _, path := range []string{"/", "/a", "/b"} {
			if n := site.getCount(path); n != 1 {
				t.Errorf("GET %s count = %d, want 1", path, n)
			}
		}
		seen := model.NewURLSet()
		for _, u := range result.Visited {
			if seen.Has(u) {
				t.Errorf("%q visited twice", u)
			}
			seen.Add(u)
		}
	})

	t.Run("frontier cap bounds discovery", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{}
		var root strings.Builder
		for i := range 500 {
			path := fmt.Sprintf("/p/%d", i)
			fmt.Fprintf(&root, `<a href="%s">%d</a>`, path, i)
			pages[path] = "<p>leaf</p>"
		}
		pages["/"] = root.String()
		site := newTestSite(t, pages)

		result, err := newTestSpider(t).Crawl(context.Background(), site.base(), 1)
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}

		limit := DiscoveryCap(1)
		if limit != 200 {
			t.Fatalf("DiscoveryCap(1) = %d, want 200", limit)
		}
		if len(result.Visited) != limit {
			t.Errorf("visited %d URLs, want %d", len(result.Visited), limit)
		}
		if len(result.Found) != limit {
			t.Errorf("found %d URLs, want %d", len(result.Found), limit)
		}
		if result.Stats.DiscoveryCapped != 500-(limit-1) {
			t.Errorf("DiscoveryCapped = %d, want %d", result.Stats.DiscoveryCapped, 500-(limit-1))
		}
	})

	t.Run("visited ceiling stops the loop", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{}
		var root strings.Builder
		for i := range 20 {
			path := fmt.Sprintf("/p/%d", i)
			fmt.Fprintf(&root, `<a href="%s">%d</a>`, path, i)
			pages[path] = "<p>leaf</p>"
		}
		pages["/"] = root.String()
		site := newTestSite(t, pages)

		result, err := newTestSpider(t, WithMaxVisited(5)).Crawl(context.Background(), site.base(), 5)
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}
		if len(result.Visited) != 5 {
			t.Errorf("visited %d URLs, want 5", len(result.Visited))
		}
	})

	t.Run("results stay on origin", func(t *testing.T) {
		t.Parallel()

		other := newTestSite(t, map[string]string{"/": `<p>other</p>`, "/x": `<p>x</p>`})
		site := newTestSite(t, map[string]string{
			"/":  fmt.Sprintf(`<a href="%s/x">other</a><a href="/y">y</a>`, other.srv.URL),
			"/y": `<p>y</p>`,
		})

		result, err := newTestSpider(t).Crawl(context.Background(), site.base(), 2)
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}

		host := site.base().Host()
		for _, u := range result.Found {
			if u.Host() != host {
				t.Errorf("%q is outside origin %q", u, host)
			}
		}
		if other.getCount("/x") != 0 {
			t.Error("spider fetched a page on another origin")
		}
	})

	t.Run("same seed gives same visiting order", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{}
		var root strings.Builder
		for i := range 30 {
			path := fmt.Sprintf("/p/%d", i)
			fmt.Fprintf(&root, `<a href="%s">%d</a>`, path, i)
			pages[path] = "<p>leaf</p>"
		}
		pages["/"] = root.String()
		site := newTestSite(t, pages)

		first, err := newTestSpider(t, WithSeed(7)).Crawl(context.Background(), site.base(), 1)
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}
		second, err := newTestSpider(t, WithSeed(7)).Crawl(context.Background(), site.base(), 1)
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}
		for i := range first.Visited {
			if first.Visited[i] != second.Visited[i] {
				t.Fatalf("order differs at %d: %q vs %q", i, first.Visited[i], second.Visited[i])
			}
		}
	})

	t.Run("cancellation returns partial result", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{}
		var root strings.Builder
		for i := range 10 {
			path := fmt.Sprintf("/p/%d", i)
			fmt.Fprintf(&root, `<a href="%s">%d</a>`, path, i)
			pages[path] = "<p>leaf</p>"
		}
		pages["/"] = root.String()
		site := newTestSite(t, pages)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		spider := newTestSpider(t, WithProgress(func(p Progress) {
			if p.Visited == 3 {
				cancel()
			}
		}))

		result, err := spider.Crawl(ctx, site.base(), 2)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if result == nil {
			t.Fatal("expected partial result")
		}
		if len(result.Visited) != 3 {
			t.Errorf("visited %d URLs, want 3", len(result.Visited))
		}
		if len(result.Found) != 2 {
			t.Errorf("found %d URLs, want 2", len(result.Found))
		}
	})

	t.Run("invalid depth", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(&fakeFetcher{})
		for _, depth := range []int{0, 6, -1} {
			if _, err := spider.Crawl(context.Background(), "https://enperu.org/", depth); !errors.Is(err, ErrInvalidDepth) {
				t.Errorf("depth %d: expected ErrInvalidDepth, got %v", depth, err)
			}
		}
	})
}

func TestClampDepth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want int
	}{
		{in: -3, want: 1},
		{in: 0, want: 1},
		{in: 1, want: 1},
		{in: 3, want: 3},
		{in: 5, want: 5},
		{in: 9, want: 5},
	}
	for _, tt := range tests {
		if got := ClampDepth(tt.in); got != tt.want {
			t.Errorf("ClampDepth(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
