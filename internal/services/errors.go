package services

import "errors"

// ErrOperationRunning is returned when a pipeline run is requested while
// another one is in progress.
var ErrOperationRunning = errors.New("operation already running")
