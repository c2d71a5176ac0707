// Package server exposes the crawl job façade over HTTP.
//
// Routes:
//
//	POST   /extract        start a crawl; 202 {"job_id"}; ?sync=1 waits for it
//	GET    /status/{id}    job state, counts and tier lists
//	GET    /result/{id}    download the result file of a finished job
//	GET    /jobs           list jobs
//	DELETE /jobs/{id}      cancel a job
//	GET    /history        stored reports, when a history database is set
//	GET    /health         liveness probe
//
// Request bodies and responses are JSON. Errors are reported as
// {"error": "..."} with a matching status code.
package server
