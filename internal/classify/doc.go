// Package classify recognizes administrative pages of Peruvian portals and
// sorts them into region (departamento), province and district tiers.
//
// Recognition is purely lexical: the lower-cased URL is matched against a
// handful of path patterns built from a fixed gazetteer of the 25 region
// slugs. No page content is inspected.
package classify
