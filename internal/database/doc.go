// Package database provides SQLite-based history storage for urlextract.
//
// HistoryDB keeps every finished crawl report so that earlier results can be
// listed and compared without crawling again. Each report is stored twice:
// once as a JSON document and once as one row per found URL, tagged with its
// administrative tier when the site was classified. The row form answers
// "which URLs have we ever seen for this domain" without decoding reports.
//
// The driver is modernc.org/sqlite, a CGO-free SQLite, so the database is a
// single file under the XDG data directory.
package database
