// Package job runs crawls asynchronously on behalf of the HTTP API.
//
// A Manager keeps a table of jobs guarded by a single mutex. Submit records a
// queued job and starts a goroutine that runs the crawl pipeline with a
// context derived from the manager's root context, so both Cancel and
// Shutdown stop running crawls. Progress reported by the spider is copied
// into the job as it runs.
//
// When a crawl finishes the job moves to done, and its result file is written
// to the results directory in the text layout. A crawl that fails or is
// cancelled moves to error with the reason in Message. Job snapshots returned
// by the manager are copies and may be read without locking.
package job
