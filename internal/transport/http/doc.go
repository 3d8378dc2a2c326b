// Package http implements the HTTP handlers of the report service. Handlers
// decode and validate the request, call a service, and render either JSON or
// RFC 7807 problem details through the shared error handler.
//
// Routes:
//
//	GET  /healthz                  liveness
//	GET  /readyz                   readiness of the working directories
//	GET  /api/v1/version           build information
//	POST /api/v1/reconstruct       rebuild a table from posted lines
//	POST /api/v1/parse-numeric     coerce value strings to numbers
//	GET  /api/v1/runs              pipeline steps and active runs
//	POST /api/v1/runs              run the pipeline over the input directory
//	GET  /api/v1/runs/{id}         step progress of an active run
package http
