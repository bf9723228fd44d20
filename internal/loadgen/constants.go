package loadgen

import "time"

// HTTP status code constants.
const (
	StatusOK              = 200
	StatusAccepted        = 202
	StatusTooManyRequests = 429
)

// Submission retry constants.
const (
	maxSubmitAttempts = 5
	backpressureDelay = 20 * time.Millisecond
)

// Runner configuration constants.
const (
	settlePollInterval   = 50 * time.Millisecond
	PercentageMultiplier = 100
)

// File permission constants.
const (
	logFilePermission   = 0o600
	directoryPermission = 0o750
)
