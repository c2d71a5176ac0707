// Package pipeline runs the stages of one crawl in sequence and many crawls
// in parallel.
//
// A crawl moves through a fixed set of steps, each receiving the same
// *model.CrawlReport and filling in its part of it:
//
//   - ResolveStep picks the canonical origin of the seed.
//   - CrawlStep walks the origin with a crawler.Spider.
//   - ClassifyStep sorts administrative pages into region, province and
//     district tiers when the origin looks like a Peruvian portal.
//   - PersistStep hands the finished report to one or more Savers.
//
// The pipeline stops at the first failing step unless WithContinueOnError is
// set. An unreachable origin therefore ends the run before any crawling.
//
// BatchProcessor crawls several seeds concurrently with errgroup.SetLimit.
// Politeness towards a shared host is kept by giving every pipeline's fetcher
// the same fetch.HostLimiter.
package pipeline
