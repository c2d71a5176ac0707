// Package main provides the entry point for the urlextract CLI.
//
// urlextract discovers every page reachable from a site within a bounded
// crawl and, for Peruvian administrative portals, sorts the pages into
// departamento, province and district tiers.
//
// Usage:
//
//	urlextract crawl enperu.org
//	urlextract serve --listen :5000
//	urlextract history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
