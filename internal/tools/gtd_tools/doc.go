// Package gtd_tools provides the read-only MCP query tools built on
// the classification predicates: due today, overdue, due in N days,
// due this week, text search, and the GTD engaged and next buckets.
package gtd_tools
