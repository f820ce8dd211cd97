package ingester

import "time"

const (
	defaultPrefetchWindow  = 16
	defaultWorkerCount     = 4
	defaultMaxReorgDepth   = 64
	defaultPollInterval    = 2 * time.Second
	defaultBackoffInterval = 5 * time.Second
)
