package rtsched

import "github.com/pkg/errors"

var (
	// ErrInvalidParameters is returned when task or job timing parameters
	// are rejected at construction.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrUninstancedJob is returned when a release time or deadline is
	// computed for a job that has no instance number.
	ErrUninstancedJob = errors.New("job has no instance")
	// ErrInvalidState is returned on an illegal job lifecycle transition.
	ErrInvalidState = errors.New("invalid job state")
	// ErrNotReady is returned when a simulation is started without
	// processors or without generated jobs.
	ErrNotReady = errors.New("simulator not ready")
	// ErrNotFound is returned by job lookups.
	ErrNotFound = errors.New("not found")
)
