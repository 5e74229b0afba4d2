// Package project_tools provides MCP tools for TickTick project
// management: listing, inspecting, creating, updating and deleting
// projects.
package project_tools
