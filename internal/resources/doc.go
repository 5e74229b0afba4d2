// Package resources registers read-only MCP resources that expose
// TickTick account data, such as the project list, alongside the tool
// surface.
package resources
