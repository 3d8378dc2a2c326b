// Package app wires configuration, logging, OpenTelemetry, services and the
// chi router into a runnable HTTP server.
//
// New builds every component from a loaded configuration and returns an
// error rather than exiting, so the caller owns the exit code. Run blocks
// until SIGINT or SIGTERM and then drains in-flight requests within the
// configured shutdown timeout.
package app
