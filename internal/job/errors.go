package job

import "errors"

var (
	// ErrNotFound is returned for an unknown job ID.
	ErrNotFound = errors.New("job not found")

	// ErrTooManyJobs is returned by Submit when the concurrency cap is reached.
	ErrTooManyJobs = errors.New("too many running jobs")

	// ErrNotFinished is returned when a result is requested before the job is done.
	ErrNotFinished = errors.New("job not finished")

	// ErrShutdown is returned by Submit after Shutdown.
	ErrShutdown = errors.New("job manager is shut down")
)
