// Package model defines the core data structures shared by the crawler,
// the classifier, the job façade and the report writers.
//
// This package contains the following main types:
//   - CanonicalURL: A normalized absolute URL used as the unit of identity
//   - ClassificationResult: The four administrative tiers of a crawl
//   - CrawlReport: The result of one seed-to-classification run
//   - Job: An asynchronous crawl tracked by the job manager
//
// The models are serializable to JSON for API responses and database storage.
package model
