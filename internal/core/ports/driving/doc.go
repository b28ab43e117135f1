// Package driving defines the driving ports: the use-case interfaces
// the core exposes to inbound adapters (HTTP, CLI, MCP, scheduler).
package driving
