package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a job to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrInvalidTaskType is returned for unknown task types
	ErrInvalidTaskType = errors.New("invalid task type")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrMissingTenantID is returned when a tenant-scoped task has no tenant
	ErrMissingTenantID = errors.New("task requires a tenant ID")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrExecutorNotConfigured is returned when a task has no wired executor
	ErrExecutorNotConfigured = errors.New("no executor configured for task type")
)
