// Package server holds the shared runtime state for the MCP server.
//
// ServerContext owns the configuration and the TickTick client. The
// client is created lazily so the server can start before credentials
// are available, and tests can inject a client pointed at a fake API.
//
// MetricsServer serves Prometheus metrics on a dedicated port, keeping
// operational metrics away from the MCP transport.
package server
