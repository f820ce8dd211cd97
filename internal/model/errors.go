package model

import "errors"

var (
	// ErrAdapterUnavailable marks a retriable failure to reach the ledger node.
	ErrAdapterUnavailable = errors.New("chain adapter unavailable")
	// ErrMalformedCursor marks a pagination cursor that cannot be decoded.
	ErrMalformedCursor = errors.New("malformed cursor")
	// ErrStorageFailure marks a failed index store operation.
	ErrStorageFailure = errors.New("storage failure")
	// ErrConsistencyViolation marks a detected breach of an index invariant.
	ErrConsistencyViolation = errors.New("consistency violation")
	// ErrSyncInProgress is returned when a sync cycle is already running.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrSyncTimeout is returned when the index did not reach the requested block in time.
	ErrSyncTimeout = errors.New("timed out waiting for sync")
	// ErrInvalidArgument marks a malformed request parameter.
	ErrInvalidArgument = errors.New("invalid argument")
)
