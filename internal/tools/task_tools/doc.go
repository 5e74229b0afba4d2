// Package task_tools provides MCP tools for TickTick task management:
// fetching, creating (single, batch and subtask), updating, completing
// and deleting tasks.
package task_tools
