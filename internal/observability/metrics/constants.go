package metrics

import "time"

// Metric name parts.
const (
	Namespace         = "prodcon"
	SubsystemBuffer   = "buffer"
	SubsystemTask     = "task"
	SubsystemAnalyzer = "analyzer"
)

// Label names.
const (
	LabelOperation = "operation"
	LabelRole      = "role"
	LabelOutcome   = "outcome"
)

// WaitBuckets covers semaphore waits from uncontended to a slow peer.
var WaitBuckets = []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 10}

const (
	// ShutdownTimeout is the timeout for graceful shutdown operations.
	ShutdownTimeout = 5 * time.Second
)
