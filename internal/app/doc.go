// Package app wires the poll dashboard together and manages its lifecycle.
//
// NewApplication builds the components in dependency order:
//
//	1. Logger from the logging config
//	2. OpenTelemetry tracing and Prometheus metrics
//	3. Fetcher for the configured source format
//	4. PollService, WebSocket hub and refresh scheduler
//	5. Router with middleware and handlers
//	6. HTTP server
//
// Run serves until the context is cancelled or SIGINT/SIGTERM arrives. The
// server, the hub and the scheduler run in one errgroup; when any of them
// fails the others are stopped. Errors are returned, never os.Exit'ed.
package app
