// Package crawler implements the crawl engine: origin resolution, the link
// frontier, link normalization and the spider that drives them.
//
// # Architecture
//
// A crawl runs in two phases. The Resolver turns a user-supplied seed such as
// "enperu.org" into one live canonical base URL by probing the https:// and
// www. variants. The Spider then walks the site from that base URL, keeping
// every page that answered 200 to both a HEAD probe and a GET.
//
// # Components
//
//   - Resolver: probes seed variants and returns the first reachable origin
//   - Frontier: unordered set of discovered URLs with pop-any semantics
//   - ExtractHyperlinkTargets: raw href values of <a> and <link> elements
//   - ExtractLinks and Normalize: same-origin canonical URLs for a page
//   - Spider: the traversal loop with its visited and size ceilings
//
// # Bounds
//
// The visited set never grows past MaxVisited. New URLs enter the frontier
// only while visited plus queued URLs stay below 100 × (maxDepth + 1). The
// depth is a size budget, not a link distance.
//
// # Usage
//
//	client, _ := fetch.NewClient()
//	base, err := crawler.NewResolver(client).Resolve(ctx, "enperu.org")
//	if err != nil {
//	    return err
//	}
//	result, err := crawler.NewSpider(client).Crawl(ctx, base, 2)
//
// # Failures
//
// Failures of individual URLs are counted in Stats and never abort the
// crawl. Crawl returns an error only for invalid arguments or when ctx is
// cancelled, in which case the partial result is returned alongside ctx.Err().
package crawler
